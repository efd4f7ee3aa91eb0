package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamcuriosity/collective/internal/api/metrics"
	"github.com/teamcuriosity/collective/internal/core/domain"
	"github.com/teamcuriosity/collective/internal/core/ports"
)

const (
	minInviteTTLHours = 1
	maxInviteTTLHours = 30 * 24
	inviteTokenBytes  = 32
)

type inviteService struct {
	repo ports.InviteRepository
	now  func() time.Time
	log  zerolog.Logger
}

// NewInviteService returns the invite ledger. now may be nil, in which case
// the wall clock is used.
func NewInviteService(repo ports.InviteRepository, now func() time.Time, log zerolog.Logger) ports.InviteService {
	if now == nil {
		now = time.Now
	}
	return &inviteService{
		repo: repo,
		now:  now,
		log:  log.With().Str("component", "invites").Logger(),
	}
}

// Issue creates a valid invite expiring ttlHours from now. The caller's
// privilege is checked at the transport layer.
func (s *inviteService) Issue(ctx context.Context, createdBy string, ttlHours int) (*domain.Invite, error) {
	if ttlHours < minInviteTTLHours || ttlHours > maxInviteTTLHours {
		return nil, fmt.Errorf("%w: ttl_hours must be between %d and %d", domain.ErrValidation, minInviteTTLHours, maxInviteTTLHours)
	}

	token, err := generateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("issue invite: %w", err)
	}

	now := s.now().UTC()
	invite := &domain.Invite{
		Token:     token,
		IsValid:   true,
		ExpiresAt: now.Add(time.Duration(ttlHours) * time.Hour),
		CreatedBy: createdBy,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("issue invite: %w", err)
	}

	metrics.InvitesIssuedTotal.Inc()
	s.log.Info().Str("created_by", createdBy).Time("expires_at", invite.ExpiresAt).Msg("invite issued")
	return invite, nil
}

// Redeem consumes the invite. Consumption is final: nothing restores a
// consumed invite, even if the registration that redeemed it fails later.
func (s *inviteService) Redeem(ctx context.Context, token string) (*domain.Invite, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}

	invite, err := s.repo.Consume(ctx, token, s.now().UTC())
	if err != nil {
		metrics.InviteRedemptionsTotal.WithLabelValues(string(domain.KindOf(err))).Inc()
		return nil, err
	}

	metrics.InviteRedemptionsTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("created_by", invite.CreatedBy).Msg("invite redeemed")
	return invite, nil
}

func (s *inviteService) RecordConsumer(ctx context.Context, token, userID string) error {
	if err := s.repo.SetConsumer(ctx, token, userID); err != nil {
		return fmt.Errorf("record invite consumer: %w", err)
	}
	return nil
}

func (s *inviteService) List(ctx context.Context) ([]*domain.Invite, error) {
	return s.repo.List(ctx)
}

// Revoke invalidates an unused invite. Revoking an invite that is already
// consumed or expired is a no-op.
func (s *inviteService) Revoke(ctx context.Context, token string) error {
	invite, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return err
	}
	if invite.State(s.now().UTC()) != domain.InviteValid {
		return nil
	}
	if err := s.repo.Invalidate(ctx, token); err != nil {
		return fmt.Errorf("revoke invite: %w", err)
	}
	s.log.Info().Msg("invite revoked")
	return nil
}

// generateInviteToken returns 32 random bytes, hex encoded.
func generateInviteToken() (string, error) {
	b := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
