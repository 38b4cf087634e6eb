package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/iliyamo/pousada-reservation/internal/model"
	"github.com/iliyamo/pousada-reservation/internal/repository"
	"github.com/iliyamo/pousada-reservation/internal/utils"
)

// AuthService checks staff credentials and issues access tokens.
type AuthService struct {
	users  *repository.UserRepo
	secret string
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users *repository.UserRepo, secret string, ttl time.Duration) *AuthService {
	if users == nil {
		panic("nil repository passed to NewAuthService")
	}
	return &AuthService{users: users, secret: secret, ttl: ttl, now: time.Now}
}

// LoginResult is a signed token and the user it was issued to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      model.User
}

// Login verifies email and password against active users.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "load user")
	}
	if !u.Active || !utils.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, ErrInvalidCredentials
	}
	tok, err := utils.NewAccessToken(s.secret, u.ID, u.Email, u.Role, s.ttl, s.now())
	if err != nil {
		return LoginResult{}, errors.Wrap(err, "sign token")
	}
	return LoginResult{Token: tok.Token, ExpiresAt: tok.Exp, User: u}, nil
}
