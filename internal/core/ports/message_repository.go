package ports

import (
	"context"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// MessageRepository is the append-only chat log.
type MessageRepository interface {
	Append(ctx context.Context, msg *domain.Message) error
	// Recent returns at most limit messages of room, newest first.
	Recent(ctx context.Context, room string, limit int) ([]*domain.Message, error)
}
