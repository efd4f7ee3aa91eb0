package service

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/api/metrics"
	"github.com/teamcuriosity/collective/internal/core/domain"
	"github.com/teamcuriosity/collective/internal/core/ports"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// MessageService is the chat message store.
type MessageService struct {
	repo ports.MessageRepository
	now  func() time.Time
	log  zerolog.Logger
}

func NewMessageService(repo ports.MessageRepository, log zerolog.Logger) *MessageService {
	return &MessageService{
		repo: repo,
		now:  time.Now,
		log:  log.With().Str("component", "messages").Logger(),
	}
}

// Append validates and persists a message. The returned record carries the
// server-assigned id and timestamp and is what gets fanned out.
func (s *MessageService) Append(ctx context.Context, room, senderID, content string) (*domain.Message, error) {
	if err := domain.ValidateRoomName(room); err != nil {
		return nil, err
	}
	if senderID == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := domain.ValidateMessageContent(content); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	msg := &domain.Message{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Room:      room,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: now,
	}

	start := time.Now()
	if err := s.repo.Append(ctx, msg); err != nil {
		metrics.MessagePersistDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		s.log.Error().Err(err).Str("room", room).Str("sender_id", senderID).Msg("failed to persist message")
		return nil, err
	}
	metrics.MessagePersistDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	metrics.MessagesPersistedTotal.Inc()

	return msg, nil
}

// RecentHistory returns the newest limit messages of room in ascending
// chronological order. A non-positive limit selects DefaultHistoryLimit;
// limits above MaxHistoryLimit are clamped.
func (s *MessageService) RecentHistory(ctx context.Context, room string, limit int) ([]*domain.Message, error) {
	if err := domain.ValidateRoomName(room); err != nil {
		return nil, err
	}
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	newest, err := s.repo.Recent(ctx, room, limit)
	if err != nil {
		return nil, err
	}
	if len(newest) > limit {
		newest = newest[:limit]
	}

	out := make([]*domain.Message, len(newest))
	for i, m := range newest {
		out[len(newest)-1-i] = m
	}
	return out, nil
}
