package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string      `json:"error"`
	Kind  domain.Kind `json:"kind"`
}

// NewHTTPErrorHandler renders every failure as {"error": ..., "kind": ...}.
// Internal errors are logged and replaced by a generic message.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, auth middleware).
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message), Kind: kindForStatus(he.Code)}
	}

	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		return http.StatusInternalServerError, errorResponse{Error: "internal server error", Kind: kind}
	}

	return statusFor(err, kind), errorResponse{Error: err.Error(), Kind: kind}
}

func statusFor(err error, kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case domain.KindAlreadyConsumed, domain.KindConflict:
		return http.StatusConflict
	case domain.KindExpired:
		return http.StatusGone
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func kindForStatus(code int) domain.Kind {
	switch code {
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusMethodNotAllowed:
		return domain.KindValidation
	case http.StatusConflict:
		return domain.KindConflict
	case http.StatusTooManyRequests:
		return domain.KindRateLimited
	}
	return domain.KindInternal
}
