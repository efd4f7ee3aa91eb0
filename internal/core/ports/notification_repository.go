package ports

import (
	"context"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// NotificationRepository persists addressed notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	// ListVisible returns, newest first, every notification addressed to
	// identityID, to everyone, and, when privileged is true, to the
	// privileged group.
	ListVisible(ctx context.Context, identityID string, privileged bool) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id string) (*domain.Notification, error)
}
