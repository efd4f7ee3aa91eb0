package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		kind    domain.Kind
		message string
	}{
		{"not found", domain.ErrNotificationNotFound, http.StatusNotFound, domain.KindNotFound, "notification not found"},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, domain.KindUnauthorized, "invalid credentials"},
		{"forbidden", domain.ErrUnauthorized, http.StatusForbidden, domain.KindUnauthorized, "unauthorized"},
		{"not approved", domain.ErrNotApproved, http.StatusForbidden, domain.KindUnauthorized, "account is awaiting approval"},
		{"consumed", domain.ErrTokenAlreadyUsed, http.StatusConflict, domain.KindAlreadyConsumed, "invite token already used"},
		{"expired", domain.ErrTokenExpired, http.StatusGone, domain.KindExpired, "invite token expired"},
		{"wrapped validation", fmt.Errorf("%w: bad", domain.ErrValidation), http.StatusBadRequest, domain.KindValidation, "validation failed: bad"},
		{"conflict", domain.ErrUserExists, http.StatusConflict, domain.KindConflict, "user already exists"},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, domain.KindRateLimited, "rate limit exceeded"},
		{"echo error", echo.NewHTTPError(http.StatusUnauthorized, "invalid token"), http.StatusUnauthorized, domain.KindUnauthorized, "invalid token"},
		{"route not found", echo.ErrNotFound, http.StatusNotFound, domain.KindNotFound, "Not Found"},
		{"internal", errors.New("mongo: connection reset"), http.StatusInternalServerError, domain.KindInternal, "internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tc.err, c)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body.Kind != tc.kind || body.Error != tc.message {
				t.Fatalf("unexpected envelope: %+v", body)
			}
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	_ = c.NoContent(http.StatusAccepted)

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrUserNotFound, c)
	if rec.Code != http.StatusAccepted || rec.Body.Len() != 0 {
		t.Fatalf("committed response must not be rewritten: %d %q", rec.Code, rec.Body.String())
	}
}
