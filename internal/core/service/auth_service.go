package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/teamcuriosity/collective/internal/core/domain"
	"github.com/teamcuriosity/collective/internal/core/ports"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input.
	maxPasswordBytes = 72

	releaseTimeout = 5 * time.Second
)

// AuthService implements registration, login and member approval.
type AuthService struct {
	repo      ports.UserRepository
	invites   ports.InviteService
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, invites ports.InviteService, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		invites:   invites,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log.With().Str("component", "auth").Logger(),
	}
}

// Register creates a member account.
//
// The very first account may be created without an invite and becomes an
// approved superadmin. If that account cannot be written the bootstrap slot
// is released again. Every later account must redeem an invite, and the
// invite is consumed before the account is written: if the write fails the
// invite stays consumed and a new one has to be issued.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	case len(in.Password) < minPasswordLength:
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	case len(in.Password) > maxPasswordBytes:
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrValidation, maxPasswordBytes)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: email is invalid", domain.ErrValidation)
	}

	// Input errors must not spend the bootstrap slot or an invite.
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	adm, err := s.admit(ctx, in.InviteToken)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         adm.role,
		Approved:     adm.approved,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if adm.bootstrap {
			s.releaseBootstrap(ctx)
		} else {
			s.log.Warn().Err(err).Str("email", email).Msg("user creation failed after invite was consumed")
		}
		return nil, err
	}

	if !adm.bootstrap {
		if err := s.invites.RecordConsumer(ctx, in.InviteToken, created.ID); err != nil {
			s.log.Warn().Err(err).Str("user_id", created.ID).Msg("failed to record invite consumer")
		}
	}

	token, err := s.generateToken(created)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return &ports.AuthResult{Token: token, User: created}, nil
}

type admission struct {
	role      domain.Role
	approved  bool
	bootstrap bool
}

// admit decides the role of a new account: the bootstrap superadmin when no
// account exists yet, otherwise an unapproved member holding a redeemed invite.
func (s *AuthService) admit(ctx context.Context, inviteToken string) (admission, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return admission{}, err
	}
	if n == 0 {
		err := s.repo.ClaimBootstrap(ctx)
		if err == nil {
			s.log.Info().Msg("bootstrap admin slot claimed")
			return admission{role: domain.RoleSuperAdmin, approved: true, bootstrap: true}, nil
		}
		if !errors.Is(err, domain.ErrBootstrapConsumed) {
			return admission{}, err
		}
	}

	if inviteToken == "" {
		return admission{}, domain.ErrInviteNeeded
	}
	if _, err := s.invites.Redeem(ctx, inviteToken); err != nil {
		return admission{}, err
	}
	return admission{role: domain.RoleMember}, nil
}

// releaseBootstrap frees the slot claimed for a first account that was
// never written. It runs on a fresh context so a cancelled request still
// releases it.
func (s *AuthService) releaseBootstrap(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.repo.ReleaseBootstrap(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to release bootstrap admin slot")
		return
	}
	s.log.Warn().Msg("bootstrap admin slot released after failed registration")
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{Token: token, User: user}, nil
}

// Approve marks a member as allowed to take part in chat.
func (s *AuthService) Approve(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.SetApproved(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", userID).Msg("user approved")
	return user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"name": user.Name,
		"role": string(user.Role),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
