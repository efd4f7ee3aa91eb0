package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const MaxNotificationContentLength = 2000

// Sentinel recipient encodings used on the wire and in storage.
const (
	RecipientAll   = "all"
	RecipientAdmin = "admin"
)

// RecipientKind tags the addressing mode of a notification.
type RecipientKind int

const (
	RecipientDirect RecipientKind = iota
	RecipientPrivileged
	RecipientBroadcast
)

// Recipient addresses a notification at one identity, at every privileged
// identity, or at everyone.
type Recipient struct {
	Kind       RecipientKind
	IdentityID string // set only for RecipientDirect
}

func Broadcast() Recipient       { return Recipient{Kind: RecipientBroadcast} }
func PrivilegedGroup() Recipient { return Recipient{Kind: RecipientPrivileged} }
func Direct(id string) Recipient { return Recipient{Kind: RecipientDirect, IdentityID: id} }

// ParseRecipient decodes the wire form. The empty string decodes to the
// privileged group.
func ParseRecipient(s string) Recipient {
	switch strings.TrimSpace(s) {
	case "", RecipientAdmin:
		return PrivilegedGroup()
	case RecipientAll:
		return Broadcast()
	}
	return Direct(strings.TrimSpace(s))
}

// String returns the wire form: "all", "admin" or the identity id.
func (r Recipient) String() string {
	switch r.Kind {
	case RecipientBroadcast:
		return RecipientAll
	case RecipientPrivileged:
		return RecipientAdmin
	}
	return r.IdentityID
}

// MarshalJSON encodes the recipient as its wire string.
func (r Recipient) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a wire string produced by MarshalJSON.
func (r *Recipient) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = ParseRecipient(s)
	return nil
}

// Label is a low-cardinality name for metrics and logs.
func (r Recipient) Label() string {
	switch r.Kind {
	case RecipientBroadcast:
		return "broadcast"
	case RecipientPrivileged:
		return "privileged"
	}
	return "direct"
}

// ResolveRecipient returns the recipient a notification from sender is
// actually delivered to. Standard senders can only reach the privileged
// group, whatever they asked for.
func ResolveRecipient(sender Identity, requested Recipient) Recipient {
	if !sender.IsPrivileged() {
		return PrivilegedGroup()
	}
	return requested
}

// Notification is a persisted, addressed inbox entry.
type Notification struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Recipient Recipient `json:"recipient"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// VisibleTo reports whether the notification belongs in viewer's inbox.
func (n *Notification) VisibleTo(viewer Identity) bool {
	switch n.Recipient.Kind {
	case RecipientBroadcast:
		return true
	case RecipientPrivileged:
		return viewer.IsPrivileged()
	}
	return n.Recipient.IdentityID == viewer.ID
}

// CanMarkRead reports whether viewer may flip the read flag. Broadcast
// entries share a single flag, so nobody may mark them.
func (n *Notification) CanMarkRead(viewer Identity) bool {
	switch n.Recipient.Kind {
	case RecipientPrivileged:
		return viewer.IsPrivileged()
	case RecipientDirect:
		return n.Recipient.IdentityID == viewer.ID
	}
	return false
}

// ValidateNotificationContent rejects blank or oversized content.
func ValidateNotificationContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxNotificationContentLength {
		return fmt.Errorf("%w: content longer than %d characters", ErrValidation, MaxNotificationContentLength)
	}
	return nil
}
