package service

import (
	"context"
	"errors"
	"net/mail"

	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
)

const minPasswordLen = 8

type UserService struct {
	users   domain.UserStore
	wallets *WalletService
	logger  *zap.Logger
}

func NewUserService(us domain.UserStore, ws *WalletService, logger *zap.Logger) *UserService {
	return &UserService{users: us, wallets: ws, logger: logger}
}

// Register creates a user and their wallet.
func (s *UserService) Register(ctx context.Context, tenantID uuid.UUID, email, password, username string) (*domain.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: string(hash),
		Username:     username,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if _, err := s.wallets.EnsureWallet(ctx, u.ID); err != nil {
		s.logger.Warn("wallet bootstrap failed at registration",
			zap.String("user_id", u.ID.String()), zap.Error(err))
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("tenant_id", tenantID.String()))
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id, tenantID uuid.UUID) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Authenticate verifies email and password for a tenant's user.
func (s *UserService) Authenticate(ctx context.Context, tenantID uuid.UUID, email, password string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrUserInactive
	}
	return u, nil
}
