package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ErrInvalidCredentials is returned by Authenticate on any mismatch.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailTaken is returned when registering an existing address.
var ErrEmailTaken = store.ErrEmailTaken

// RegisterInput is a new account request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register creates a regular user account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = store.NormalizeEmail(in.Email)
	if err := check(&in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := store.CreateUser(ctx, s.DB, in.Email, in.Name, hash, model.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger().Info("user registered", "user", user.Email)
	return user, nil
}

// Authenticate checks an e-mail and password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, &ValidationError{Fields: map[string]string{"email": "email and password required"}}
	}

	user, err := store.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.DeletedAt != nil || !auth.CheckPassword(user.PasswordHash, password) {
		s.logger().Warn("login failed", "user", store.NormalizeEmail(email))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword replaces a user's password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if err := model.ValidatePassword(next); err != nil {
		return &ValidationError{Fields: map[string]string{"new_password": err.Error()}}
	}

	user, err := store.GetUser(ctx, s.DB, userID)
	if err != nil {
		return err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := store.UpdateUserPassword(ctx, s.DB, userID, hash); err != nil {
		return err
	}
	s.logger().Info("user changed password", "user", user.Email)
	return nil
}
