package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/api/metrics"
	"github.com/teamcuriosity/collective/internal/core/domain"
	"github.com/teamcuriosity/collective/internal/core/ports"
)

type notificationService struct {
	repo  ports.NotificationRepository
	users ports.UserRepository
	log   zerolog.Logger
}

// NewNotificationService returns the notification router.
func NewNotificationService(repo ports.NotificationRepository, users ports.UserRepository, log zerolog.Logger) ports.NotificationService {
	return &notificationService{
		repo:  repo,
		users: users,
		log:   log.With().Str("component", "notifications").Logger(),
	}
}

// Send persists a notification from sender. A standard sender always
// reaches the privileged group regardless of the requested recipient.
func (s *notificationService) Send(ctx context.Context, sender domain.Identity, recipient, content string) (*domain.Notification, error) {
	if sender.ID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := domain.ValidateNotificationContent(content); err != nil {
		return nil, err
	}

	requested := domain.ParseRecipient(recipient)
	effective := domain.ResolveRecipient(sender, requested)
	if effective != requested {
		s.log.Debug().
			Str("sender_id", sender.ID).
			Str("requested", requested.String()).
			Msg("recipient overridden for standard sender")
	}

	if effective.Kind == domain.RecipientDirect {
		if _, err := s.users.FindByID(ctx, effective.IdentityID); err != nil {
			return nil, err
		}
	}

	n := &domain.Notification{
		ID:        uuid.NewString(),
		SenderID:  sender.ID,
		Recipient: effective,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("send notification: %w", err)
	}

	metrics.NotificationsSentTotal.WithLabelValues(effective.Label()).Inc()
	s.log.Info().
		Str("id", n.ID).
		Str("sender_id", sender.ID).
		Str("recipient", effective.String()).
		Msg("notification sent")
	return n, nil
}

// Inbox lists what viewer may see, newest first.
func (s *notificationService) Inbox(ctx context.Context, viewer domain.Identity) ([]*domain.Notification, error) {
	if viewer.ID == "" {
		return nil, domain.ErrUnauthorized
	}

	items, err := s.repo.ListVisible(ctx, viewer.ID, viewer.IsPrivileged())
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	// An inbox never holds another member's direct notifications.
	visible := items[:0]
	for _, n := range items {
		if n.VisibleTo(viewer) {
			visible = append(visible, n)
		}
	}
	return visible, nil
}

// MarkRead flips the read flag. Marking an already read notification
// returns it unchanged.
func (s *notificationService) MarkRead(ctx context.Context, id string, viewer domain.Identity) (*domain.Notification, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !n.CanMarkRead(viewer) {
		return nil, domain.ErrUnauthorized
	}
	if n.IsRead {
		return n, nil
	}

	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark notification read: %w", err)
	}
	return updated, nil
}
