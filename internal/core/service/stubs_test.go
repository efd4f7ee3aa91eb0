package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// --- users ---

type stubUserRepo struct {
	mu        sync.Mutex
	users     map[string]*domain.User // by id
	seq       int
	bootstrap bool
	createErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	c := cloneUser(user)
	c.ID = "u" + strconv.Itoa(r.seq)
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *stubUserRepo) SetApproved(_ context.Context, id string, approved bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Approved = approved
	return cloneUser(u), nil
}

func (r *stubUserRepo) ClaimBootstrap(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bootstrap {
		return domain.ErrBootstrapConsumed
	}
	r.bootstrap = true
	return nil
}

func (r *stubUserRepo) ReleaseBootstrap(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bootstrap = false
	return nil
}

// --- invites ---

// stubInviteRepo mirrors the storage contract: Consume is a compare-and-set
// under a single lock.
type stubInviteRepo struct {
	mu      sync.Mutex
	invites map[string]*domain.Invite
}

func newStubInviteRepo() *stubInviteRepo {
	return &stubInviteRepo{invites: make(map[string]*domain.Invite)}
}

func cloneInvite(i *domain.Invite) *domain.Invite {
	c := *i
	return &c
}

func (r *stubInviteRepo) put(inv *domain.Invite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites[inv.Token] = cloneInvite(inv)
}

func (r *stubInviteRepo) get(token string) *domain.Invite {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invites[token]; ok {
		return cloneInvite(inv)
	}
	return nil
}

func (r *stubInviteRepo) Create(_ context.Context, inv *domain.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.invites[inv.Token]; ok {
		return domain.ErrDuplicateToken
	}
	r.invites[inv.Token] = cloneInvite(inv)
	return nil
}

func (r *stubInviteRepo) FindByToken(_ context.Context, token string) (*domain.Invite, error) {
	if inv := r.get(token); inv != nil {
		return inv, nil
	}
	return nil, domain.ErrTokenNotFound
}

func (r *stubInviteRepo) List(context.Context) ([]*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Invite, 0, len(r.invites))
	for _, inv := range r.invites {
		out = append(out, cloneInvite(inv))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *stubInviteRepo) Consume(_ context.Context, token string, now time.Time) (*domain.Invite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[token]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	if err := inv.RedeemError(now); err != nil {
		return nil, err
	}
	inv.IsValid = false
	used := now
	inv.UsedAt = &used
	return cloneInvite(inv), nil
}

func (r *stubInviteRepo) SetConsumer(_ context.Context, token, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[token]
	if !ok {
		return domain.ErrTokenNotFound
	}
	if inv.UsedBy == "" {
		inv.UsedBy = userID
	}
	return nil
}

func (r *stubInviteRepo) Invalidate(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[token]
	if !ok {
		return domain.ErrTokenNotFound
	}
	inv.IsValid = false
	return nil
}

// --- messages ---

type stubMessageRepo struct {
	mu     sync.Mutex
	msgs   []*domain.Message
	err    error
	recent func(room string, limit int) []*domain.Message
}

func (r *stubMessageRepo) Append(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	c := *msg
	r.msgs = append(r.msgs, &c)
	return nil
}

// Recent honours the newest-first contract of the real repository.
func (r *stubMessageRepo) Recent(_ context.Context, room string, limit int) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.recent != nil {
		return r.recent(room, limit), nil
	}
	var out []*domain.Message
	for i := len(r.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.msgs[i].Room == room {
			out = append(out, r.msgs[i])
		}
	}
	return out, nil
}

// --- notifications ---

type stubNotificationRepo struct {
	mu    sync.Mutex
	items []*domain.Notification
}

func (r *stubNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *n
	r.items = append(r.items, &c)
	return nil
}

func (r *stubNotificationRepo) FindByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

// ListVisible returns a superset on purpose: every stored item, newest
// first. The service must filter.
func (r *stubNotificationRepo) ListVisible(context.Context, string, bool) ([]*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Notification, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		c := *r.items[i]
		out = append(out, &c)
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id {
			n.IsRead = true
			c := *n
			return &c, nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

var errStorage = errors.New("storage unavailable")

// clock is a manually advanced time source.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
