package services

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"docchat/internal/core"
	"docchat/internal/models"
)

// dummyHash keeps the unknown-username path as slow as a real comparison so
// callers cannot tell a missing user from a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("docchat-timing-pad"), bcrypt.DefaultCost)

type AuthService struct {
	db core.DbClient
}

func NewAuthService(db core.DbClient) *AuthService {
	return &AuthService{db: db}
}

// Register creates a new user with a bcrypt-hashed password. It returns
// (false, nil) when the username is already taken; any other storage failure
// is returned as an error.
func (s *AuthService) Register(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, errors.New("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
	}
	err = s.db.CreateUser(ctx, user)
	if errors.Is(err, core.ErrDuplicateUsername) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Verify checks a username/password pair and returns the user ID on match.
// An unknown username and a wrong password produce the identical
// (0, false, nil) result.
func (s *AuthService) Verify(ctx context.Context, username, password string) (int64, bool, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, false, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return 0, false, nil
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return 0, false, nil
	}
	return user.ID, true, nil
}
