package handler

import (
	"time"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// --- auth ---

type registerRequest struct {
	Name        string `json:"name"         validate:"required,max=64"`
	Email       string `json:"email"        validate:"required,email"`
	Password    string `json:"password"     validate:"required,min=8,max=72"`
	InviteToken string `json:"invite_token"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// --- invites ---

type issueInviteRequest struct {
	TTLHours int `json:"ttl_hours" validate:"required,min=1,max=720"`
}

type inviteResponse struct {
	Token     string     `json:"token"`
	State     string     `json:"state"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedBy string     `json:"created_by"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toInviteResponse(inv *domain.Invite, now time.Time) inviteResponse {
	return inviteResponse{
		Token:     inv.Token,
		State:     string(inv.State(now)),
		ExpiresAt: inv.ExpiresAt,
		CreatedBy: inv.CreatedBy,
		UsedBy:    inv.UsedBy,
		UsedAt:    inv.UsedAt,
		CreatedAt: inv.CreatedAt,
	}
}

// --- notifications ---

type sendNotificationRequest struct {
	Content   string `json:"content"   validate:"required"`
	Recipient string `json:"recipient"`
}

type inboxResponse struct {
	Items  []*domain.Notification `json:"items"`
	Unread int                    `json:"unread"`
}

// --- chat ---

type historyResponse struct {
	Room     string            `json:"room"`
	Messages []*domain.Message `json:"messages"`
}
