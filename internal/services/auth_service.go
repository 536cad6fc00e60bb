package services

import (
	"context"
	"errors"
	"fmt"

	"minimart/internal/domain"
	"minimart/internal/store"
)

var ErrBadCreds = errors.New("invalid username or password")

// AuthService resolves session tokens and owns the login/registration flows.
type AuthService struct {
	Users store.UserStore
}

func NewAuthService(users store.UserStore) *AuthService {
	return &AuthService{Users: users}
}

// Resolve maps a cookie token to its user. A missing, stale or unknown token
// resolves to (nil, nil): "not logged in" is indistinguishable from "bad
// token" on purpose, so nothing about valid tokens leaks to a guesser.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.Users.ByToken(ctx, token)
}

// Login checks the name/password pair and returns the user on success. The
// comparison is a verbatim string match, as the lab contract documents.
func (s *AuthService) Login(ctx context.Context, name, password string) (*domain.User, error) {
	u, err := s.Users.ByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("login lookup: %w", err)
	}
	if u == nil || u.Password != password {
		return nil, ErrBadCreds
	}
	return u, nil
}

// Register creates a user-role account. The store assigns the id and session
// token and rejects a taken name with store.ErrDuplicateName, which callers
// render as a form message.
func (s *AuthService) Register(ctx context.Context, name, password string, age int) (*domain.User, error) {
	u := &domain.User{
		Name:     name,
		Age:      age,
		Password: password,
		Role:     domain.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
