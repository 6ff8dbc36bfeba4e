package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func setupUserTest() (*UserService, *WalletService) {
	us := newMockUserStore()
	wallets, _ := setupWalletTest()
	return NewUserService(us, wallets, zap.NewNop()), wallets
}

func TestUserService_Register(t *testing.T) {
	svc, wallets := setupUserTest()
	ctx := context.Background()
	tenantID := uuid.New()

	u, err := svc.Register(ctx, tenantID, "dev@example.com", "hunter2hunter2", "dev")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatal("expected user ID to be set")
	}
	if u.PasswordHash == "hunter2hunter2" {
		t.Fatal("password must not be stored in plaintext")
	}

	// Registration bootstraps the wallet.
	if _, err := wallets.Get(ctx, u.ID); err != nil {
		t.Fatalf("expected wallet for new user: %v", err)
	}
}

func TestUserService_Register_InvalidEmail(t *testing.T) {
	svc, _ := setupUserTest()

	if _, err := svc.Register(context.Background(), uuid.New(), "not-an-email", "hunter2hunter2", "x"); err != ErrInvalidEmail {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestUserService_Register_ShortPassword(t *testing.T) {
	svc, _ := setupUserTest()

	if _, err := svc.Register(context.Background(), uuid.New(), "a@b.test", "short", "x"); err != ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := setupUserTest()
	ctx := context.Background()
	tenantID := uuid.New()

	if _, err := svc.Register(ctx, tenantID, "a@b.test", "hunter2hunter2", "x"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, tenantID, "a@b.test", "hunter2hunter2", "y"); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc, _ := setupUserTest()
	ctx := context.Background()
	tenantID := uuid.New()

	u, err := svc.Register(ctx, tenantID, "a@b.test", "hunter2hunter2", "x")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	got, err := svc.Authenticate(ctx, tenantID, "a@b.test", "hunter2hunter2")
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("expected user %s, got %s", u.ID, got.ID)
	}

	if _, err := svc.Authenticate(ctx, tenantID, "a@b.test", "wrong-password"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, tenantID, "nobody@b.test", "hunter2hunter2"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
