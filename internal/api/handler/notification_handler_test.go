package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

type stubNotificationService struct {
	sent  []string
	inbox []*domain.Notification
}

func (s *stubNotificationService) Send(_ context.Context, sender domain.Identity, recipient, content string) (*domain.Notification, error) {
	if err := domain.ValidateNotificationContent(content); err != nil {
		return nil, err
	}
	s.sent = append(s.sent, recipient)
	return &domain.Notification{
		ID:        "n1",
		SenderID:  sender.ID,
		Recipient: domain.ResolveRecipient(sender, domain.ParseRecipient(recipient)),
		Content:   content,
	}, nil
}

func (s *stubNotificationService) Inbox(context.Context, domain.Identity) ([]*domain.Notification, error) {
	return s.inbox, nil
}

func (s *stubNotificationService) MarkRead(_ context.Context, id string, viewer domain.Identity) (*domain.Notification, error) {
	if id != "n1" {
		return nil, domain.ErrNotificationNotFound
	}
	if !viewer.IsPrivileged() {
		return nil, domain.ErrUnauthorized
	}
	return &domain.Notification{ID: id, Recipient: domain.PrivilegedGroup(), IsRead: true}, nil
}

func TestNotificationHandler_Send(t *testing.T) {
	svc := &stubNotificationService{}
	h := NewNotificationHandler(svc)

	c, rec := newJSONContext(newEcho(), http.MethodPost, "/v1/notifications", strings.NewReader(`{"content":"hello","recipient":"all"}`))
	withIdentity(c, "m1", domain.RoleMember)
	if err := h.Send(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	decode(t, rec, &resp)
	if resp["recipient"] != "admin" {
		t.Fatalf("member notification should be routed to admin, got %v", resp["recipient"])
	}
}

func TestNotificationHandler_Send_RequiresIdentity(t *testing.T) {
	c, _ := newJSONContext(newEcho(), http.MethodPost, "/v1/notifications", strings.NewReader(`{"content":"hello"}`))
	expectHTTPStatus(t, NewNotificationHandler(&stubNotificationService{}).Send(c), http.StatusUnauthorized)
}

func TestNotificationHandler_Send_EmptyContent(t *testing.T) {
	c, _ := newJSONContext(newEcho(), http.MethodPost, "/v1/notifications", strings.NewReader(`{"content":""}`))
	withIdentity(c, "m1", domain.RoleMember)
	expectKind(t, NewNotificationHandler(&stubNotificationService{}).Send(c), domain.KindValidation)
}

func TestNotificationHandler_List_CountsUnread(t *testing.T) {
	svc := &stubNotificationService{inbox: []*domain.Notification{
		{ID: "3", Recipient: domain.Broadcast()},
		{ID: "2", Recipient: domain.Direct("m1"), IsRead: true},
		{ID: "1", Recipient: domain.Direct("m1")},
	}}

	c, rec := newJSONContext(newEcho(), http.MethodGet, "/v1/notifications", nil)
	withIdentity(c, "m1", domain.RoleMember)
	if err := NewNotificationHandler(svc).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp struct {
		Items  []map[string]any `json:"items"`
		Unread int              `json:"unread"`
	}
	decode(t, rec, &resp)
	if len(resp.Items) != 3 || resp.Unread != 2 {
		t.Fatalf("unexpected inbox: %+v", resp)
	}
	if resp.Items[0]["id"] != "3" {
		t.Fatalf("order must be preserved, got %v", resp.Items[0]["id"])
	}
}

func TestNotificationHandler_List_EmptyIsArray(t *testing.T) {
	c, rec := newJSONContext(newEcho(), http.MethodGet, "/v1/notifications", nil)
	withIdentity(c, "m1", domain.RoleMember)
	if err := NewNotificationHandler(&stubNotificationService{}).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	h := NewNotificationHandler(&stubNotificationService{})

	c, rec := newJSONContext(newEcho(), http.MethodPost, "/v1/notifications/n1/read", nil)
	c.SetParamNames("id")
	c.SetParamValues("n1")
	withIdentity(c, "a1", domain.RoleAdmin)
	if err := h.MarkRead(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp map[string]any
	decode(t, rec, &resp)
	if resp["is_read"] != true {
		t.Fatalf("expected is_read true, got %v", resp["is_read"])
	}

	c, _ = newJSONContext(newEcho(), http.MethodPost, "/v1/notifications/n1/read", nil)
	c.SetParamNames("id")
	c.SetParamValues("n1")
	withIdentity(c, "m1", domain.RoleMember)
	expectKind(t, h.MarkRead(c), domain.KindUnauthorized)
}
