package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*config.Config, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:auth_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{SecretKey: "admin-secret", ExpireHours: 2}
	cfg.UserJWT = config.JWTConfig{SecretKey: "user-secret", ExpireHours: 2}
	cfg.Security.PasswordPolicy = config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true}
	cfg.Fraud.IPSalt = "auth-salt"
	return cfg, db
}

func TestAdminLoginAndParseJWT(t *testing.T) {
	cfg, db := setupAuthServiceTest(t)
	svc := NewAuthService(cfg, repository.NewAdminRepository(db))

	created, err := svc.CreateAdmin(" ops ", "Passw0rd1")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	if created.Username != "ops" {
		t.Fatalf("expected trimmed username, got %q", created.Username)
	}
	if _, err := svc.CreateAdmin("ops", "Passw0rd1"); !errors.Is(err, ErrAdminExists) {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}

	if _, _, _, err := svc.Login("ops", "wrong-pass1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, _, err := svc.Login("ghost", "Passw0rd1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown admin, got %v", err)
	}

	admin, token, expiresAt, err := svc.Login("ops", "Passw0rd1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if admin.LastLoginAt == nil {
		t.Fatalf("expected last login time to be recorded")
	}
	if !expiresAt.After(time.Now()) {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := svc.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse jwt failed: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Username != "ops" || claims.TokenVersion != admin.TokenVersion {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	other := NewAuthService(&config.Config{JWT: config.JWTConfig{SecretKey: "other", ExpireHours: 1}}, nil)
	if _, err := other.ParseJWT(token); err == nil {
		t.Fatalf("expected signature mismatch error")
	}
}

func TestAdminChangePasswordBumpsTokenVersion(t *testing.T) {
	cfg, db := setupAuthServiceTest(t)
	repo := repository.NewAdminRepository(db)
	svc := NewAuthService(cfg, repo)

	admin, err := svc.CreateAdmin("finance", "Passw0rd1")
	if err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	before := admin.TokenVersion

	if err := svc.ChangePassword(admin.ID, "bad-old-1", "NewPassw0rd"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "Passw0rd1", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if err := svc.ChangePassword(admin.ID, "Passw0rd1", "NewPassw0rd"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	reloaded, err := repo.GetByID(admin.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload admin failed: %v", err)
	}
	if reloaded.TokenVersion != before+1 {
		t.Fatalf("expected token version %d, got %d", before+1, reloaded.TokenVersion)
	}
	if _, _, _, err := svc.Login("finance", "NewPassw0rd"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
	if err := svc.ChangePassword(9999, "x", "y"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRegisterLoginAndParseJWT(t *testing.T) {
	cfg, db := setupAuthServiceTest(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewUserAuthService(cfg, userRepo, NewSettingService(newMockSettingRepo()))

	user, token, _, err := svc.Register(RegisterInput{
		Email:    "  Alice@Example.com ",
		Password: "Passw0rd1",
		ClientIP: "198.51.100.7",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.DisplayName == "" || user.ReferralCode == "" {
		t.Fatalf("expected display name and referral code, got %+v", user)
	}
	if user.ReferralIPHash != HashIP("198.51.100.7", "auth-salt") {
		t.Fatalf("unexpected referral ip hash %q", user.ReferralIPHash)
	}

	claims, err := svc.ParseUserJWT(token)
	if err != nil {
		t.Fatalf("parse user jwt failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, _, err := svc.Register(RegisterInput{Email: "alice@example.com", Password: "Passw0rd1"}); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
	if _, _, _, err := svc.Register(RegisterInput{Email: "bob@example.com", Password: "nodigits"}); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if _, _, _, err := svc.Login("alice@example.com", "wrong-pass1", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	logged, loginToken, _, err := svc.Login("ALICE@example.com", "Passw0rd1", "203.0.113.9")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.LastLoginIPHash != HashIP("203.0.113.9", "auth-salt") {
		t.Fatalf("expected login ip hash to be refreshed")
	}
	if _, err := svc.ParseUserJWT(loginToken); err != nil {
		t.Fatalf("parse login token failed: %v", err)
	}

	if err := db.Model(user).Update("status", constants.UserStatusDisabled).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, _, _, err := svc.Login("alice@example.com", "Passw0rd1", ""); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
}

func TestUserRegisterWithReferralCode(t *testing.T) {
	cfg, db := setupAuthServiceTest(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewUserAuthService(cfg, userRepo, NewSettingService(newMockSettingRepo()))

	referrer, _, _, err := svc.Register(RegisterInput{Email: "ref@example.com", Password: "Passw0rd1", ClientIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("register referrer failed: %v", err)
	}

	clean, _, _, err := svc.Register(RegisterInput{
		Email:        "clean@example.com",
		Password:     "Passw0rd1",
		ReferralCode: " " + referrer.ReferralCode + " ",
		ClientIP:     "10.0.0.2",
	})
	if err != nil {
		t.Fatalf("register referred user failed: %v", err)
	}
	if clean.ReferredByID == nil || *clean.ReferredByID != referrer.ID {
		t.Fatalf("expected referrer link, got %v", clean.ReferredByID)
	}
	if clean.ReferralFraudFlag {
		t.Fatalf("expected distinct ip to pass fraud check")
	}
	if clean.ReferralBonusExpires != nil {
		t.Fatalf("expected unlimited referral bonus by default")
	}

	sameIP, _, _, err := svc.Register(RegisterInput{
		Email:        "twin@example.com",
		Password:     "Passw0rd1",
		ReferralCode: referrer.ReferralCode,
		ClientIP:     "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("register same-ip user failed: %v", err)
	}
	if !sameIP.ReferralFraudFlag || sameIP.ReferralFraudReason != constants.ReferralFraudSameIP {
		t.Fatalf("expected same ip fraud flag, got flag=%v reason=%q", sameIP.ReferralFraudFlag, sameIP.ReferralFraudReason)
	}

	orphan, _, _, err := svc.Register(RegisterInput{Email: "orphan@example.com", Password: "Passw0rd1", ReferralCode: "NOPE0000"})
	if err != nil {
		t.Fatalf("register with unknown code failed: %v", err)
	}
	if orphan.ReferredByID != nil {
		t.Fatalf("expected unknown referral code to be ignored")
	}
}

func TestUserChangePasswordBumpsTokenVersion(t *testing.T) {
	cfg, db := setupAuthServiceTest(t)
	userRepo := repository.NewUserRepository(db)
	svc := NewUserAuthService(cfg, userRepo, NewSettingService(newMockSettingRepo()))

	user, _, _, err := svc.Register(RegisterInput{Email: "carol@example.com", Password: "Passw0rd1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Passw0rd9", "NewPassw0rd"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if err := svc.ChangePassword(user.ID, "Passw0rd1", "NewPassw0rd"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	reloaded, err := svc.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.TokenVersion != user.TokenVersion+1 {
		t.Fatalf("expected token version bump, got %d", reloaded.TokenVersion)
	}
	if _, err := svc.GetUserByID(9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
