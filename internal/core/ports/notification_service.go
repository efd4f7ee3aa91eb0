package ports

import (
	"context"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// NotificationService routes notifications and serves inboxes.
type NotificationService interface {
	Send(ctx context.Context, sender domain.Identity, recipient, content string) (*domain.Notification, error)
	Inbox(ctx context.Context, viewer domain.Identity) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string, viewer domain.Identity) (*domain.Notification, error)
}
