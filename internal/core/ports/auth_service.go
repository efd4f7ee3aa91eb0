package ports

import (
	"context"

	"github.com/teamcuriosity/collective/internal/core/domain"
)

// RegisterInput carries the self-service registration form.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	InviteToken string
}

// AuthResult is a freshly authenticated identity plus its session credential.
type AuthResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Approve(ctx context.Context, userID string) (*domain.User, error)
}
