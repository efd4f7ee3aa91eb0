package ports

import (
	"context"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// InviteService is the registration gate.
type InviteService interface {
	Issue(ctx context.Context, createdBy string, ttlHours int) (*domain.Invite, error)
	Redeem(ctx context.Context, token string) (*domain.Invite, error)
	RecordConsumer(ctx context.Context, token, userID string) error
	List(ctx context.Context) ([]*domain.Invite, error)
	Revoke(ctx context.Context, token string) error
}
