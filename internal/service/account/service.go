package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/joshfermano/perpsbot/server/internal/model/user"
	"github.com/joshfermano/perpsbot/server/internal/store"
)

var (
	// ErrUserExists signals a register attempt with a taken username or email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for both an unknown email and a wrong
	// password, so login failures do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service manages registered accounts: creation with hashed passwords and
// credential verification at login.
type Service struct {
	users      store.UserStore
	bcryptCost int
}

// NewService builds the account service over the given user store.
func NewService(users store.UserStore, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{users: users, bcryptCost: bcryptCost}
}

// Register creates an account. The password is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, username, email, password string) (user.User, error) {
	taken, err := s.users.Exists(ctx, username, email)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to check existing users: %w", err)
	}
	if taken {
		return user.User{}, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Insert(ctx, u); err != nil {
		return user.User{}, fmt.Errorf("failed to store user: %w", err)
	}
	return u, nil
}

// Login verifies the email/password pair and returns the matching account.
func (s *Service) Login(ctx context.Context, email, password string) (user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return user.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return user.User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return user.User{}, ErrInvalidCredentials
	}
	return u, nil
}
