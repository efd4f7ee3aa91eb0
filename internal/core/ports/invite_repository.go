package ports

import (
	"context"
	"time"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// InviteRepository persists the invite ledger.
type InviteRepository interface {
	Create(ctx context.Context, invite *domain.Invite) error
	FindByToken(ctx context.Context, token string) (*domain.Invite, error)
	List(ctx context.Context) ([]*domain.Invite, error)

	// Consume flips is_valid from true to false for an unexpired invite as a
	// single compare-and-set and stamps used_at. When the invite cannot be
	// consumed it returns domain.ErrTokenNotFound, domain.ErrTokenExpired or
	// domain.ErrTokenAlreadyUsed. Of N concurrent callers at most one succeeds.
	Consume(ctx context.Context, token string, now time.Time) (*domain.Invite, error)

	// SetConsumer records who used an already consumed invite. It never
	// overwrites an existing consumer.
	SetConsumer(ctx context.Context, token, userID string) error

	// Invalidate clears is_valid without recording a consumer.
	Invalidate(ctx context.Context, token string) error
}
