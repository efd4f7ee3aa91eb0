package ports

import (
	"context"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// MessageStore persists chat messages and replays bounded history.
type MessageStore interface {
	// Append stores a message with a server-assigned id and timestamp and
	// returns the canonical record.
	Append(ctx context.Context, room, senderID, content string) (*domain.Message, error)
	// RecentHistory returns the newest limit messages of room, oldest first.
	RecentHistory(ctx context.Context, room string, limit int) ([]*domain.Message, error)
}
