package ports

import (
	"context"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// UserRepository defines persistence operations for registered identities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
	SetApproved(ctx context.Context, id string, approved bool) (*domain.User, error)
	// ClaimBootstrap atomically claims the one-time first-admin slot.
	// It returns domain.ErrBootstrapConsumed once the slot has been taken.
	ClaimBootstrap(ctx context.Context) error
	// ReleaseBootstrap frees a claimed slot whose first account was never
	// created. Releasing an unclaimed slot is not an error.
	ReleaseBootstrap(ctx context.Context) error
}
