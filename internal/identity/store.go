// Package identity manages accounts and password credentials.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dtroode/tokenkeeper/internal/model"
)

var _ model.IdentityStore = (*Store)(nil)

// Store applies the password policy and bcrypt hashing on top of a UserStore.
type Store struct {
	users      model.UserStore
	bcryptCost int
}

// NewStore creates a Store. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewStore(users model.UserStore, bcryptCost int) *Store {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Store{users: users, bcryptCost: bcryptCost}
}

func (s *Store) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(email))
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Create validates the password, rejects taken emails and persists the hashed credential.
func (s *Store) Create(ctx context.Context, email, username, password string) (model.User, error) {
	if details := CheckPasswordPolicy(password); len(details) > 0 {
		return model.User{}, &model.PasswordPolicyError{Details: details}
	}

	email = strings.TrimSpace(email)
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return model.User{}, model.ErrEmailInUse
	case !errors.Is(err, model.ErrNotFound):
		return model.User{}, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrEmailInUse) {
			return model.User{}, model.ErrEmailInUse
		}
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// CheckPassword reports whether password matches the user's stored hash.
func (s *Store) CheckPassword(user model.User, password string) bool {
	if len(user.PasswordHash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) == nil
}
