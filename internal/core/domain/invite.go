package domain

import "time"

// InviteState is derived from the stored flag and the current time.
type InviteState string

const (
	InviteValid    InviteState = "valid"
	InviteConsumed InviteState = "consumed"
	InviteExpired  InviteState = "expired"
)

// Invite is a single-use, time-bounded registration credential.
//
// IsValid only moves from true to false. Expiry is never stored; it is
// evaluated against the clock every time the invite is looked at.
type Invite struct {
	Token     string     `json:"token"`
	IsValid   bool       `json:"is_valid"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedBy string     `json:"created_by"`
	UsedBy    string     `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsExpired reports whether the validity window has closed at now.
func (i *Invite) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// State returns the ledger state at now. Expiry wins over consumption.
func (i *Invite) State(now time.Time) InviteState {
	if i.IsExpired(now) {
		return InviteExpired
	}
	if !i.IsValid {
		return InviteConsumed
	}
	return InviteValid
}

// RedeemError explains why the invite cannot be redeemed at now, or
// returns nil when it can.
func (i *Invite) RedeemError(now time.Time) error {
	switch i.State(now) {
	case InviteExpired:
		return ErrTokenExpired
	case InviteConsumed:
		return ErrTokenAlreadyUsed
	}
	return nil
}
