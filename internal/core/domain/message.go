package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxRoomNameLength       = 64
	MaxMessageContentLength = 4000
)

// Message is a persisted chat line. Messages are append-only and never
// change after they are stored.
type Message struct {
	ID        string    `json:"id"         bson:"_id"`
	Room      string    `json:"room"       bson:"room"`
	SenderID  string    `json:"sender_id"  bson:"sender_id"`
	Content   string    `json:"content"    bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// ValidateRoomName checks that room is usable as a directory key.
// Room names are case-sensitive and are not trimmed or folded.
func ValidateRoomName(room string) error {
	switch {
	case room == "":
		return fmt.Errorf("%w: room is required", ErrInvalidRoom)
	case strings.TrimSpace(room) != room:
		return fmt.Errorf("%w: surrounding whitespace", ErrInvalidRoom)
	case utf8.RuneCountInString(room) > MaxRoomNameLength:
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidRoom, MaxRoomNameLength)
	}
	return nil
}

// ValidateMessageContent rejects blank or oversized chat content.
func ValidateMessageContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxMessageContentLength {
		return fmt.Errorf("%w: content longer than %d characters", ErrValidation, MaxMessageContentLength)
	}
	return nil
}
