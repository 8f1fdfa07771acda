package service

import (
	"context"
	"errors"
	"testing"

	"github.com/clickvault/internal/cache"
	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"
)

func TestAdminAuthenticateTracksTokenVersion(t *testing.T) {
	cfg, db := setupAuthServiceTest(t)
	svc := NewAuthService(cfg, repository.NewAdminRepository(db))
	ctx := context.Background()

	if _, err := svc.CreateAdmin("root", "Passw0rd1"); err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	admin, token, _, err := svc.Login("root", "Passw0rd1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	p, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if p.Kind != cache.PrincipalAdmin || p.ID != admin.ID || p.Name != "root" {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if _, err := svc.Authenticate(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "Passw0rd1", "NewPassw0rd1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrTokenRevoked) {
		t.Fatalf("expected ErrTokenRevoked after password change, got %v", err)
	}

	unconfigured := NewAuthService(&config.Config{}, nil)
	if _, err := unconfigured.Authenticate(ctx, token); !errors.Is(err, ErrAuthNotConfigured) {
		t.Fatalf("expected ErrAuthNotConfigured, got %v", err)
	}
}

func TestUserAuthenticateRejectsDisabledAccount(t *testing.T) {
	cfg, db := setupAuthServiceTest(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewUserAuthService(cfg, userRepo, NewSettingService(newMockSettingRepo()))
	ctx := context.Background()

	user, token, _, err := svc.Register(RegisterInput{Email: "dave@example.com", Password: "Passw0rd1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	p, err := svc.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("authenticate failed: %v", err)
	}
	if p.Kind != cache.PrincipalUser || p.ID != user.ID || p.Name != "dave@example.com" {
		t.Fatalf("unexpected principal: %+v", p)
	}

	if err := userRepo.UpdateStatus([]uint{user.ID}, constants.UserStatusDisabled); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}

	adminToken, _, err := NewAuthService(cfg, nil).GenerateJWT(&models.Admin{ID: user.ID, Username: "x"})
	if err != nil {
		t.Fatalf("sign admin token failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, adminToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("admin token must not authenticate a user, got %v", err)
	}
}
