package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/mail"
	"strings"
	"time"

	"github.com/clickvault/internal/cache"
	"github.com/clickvault/internal/config"
	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const (
	referralCodeBytes      = 4
	referralCodeMaxRetries = 8
)

// UserAuthService 用户认证服务
type UserAuthService struct {
	cfg            *config.Config
	userRepo       repository.UserRepository
	settingService *SettingService
}

// NewUserAuthService 创建用户认证服务
func NewUserAuthService(cfg *config.Config, userRepo repository.UserRepository, settingService *SettingService) *UserAuthService {
	return &UserAuthService{
		cfg:            cfg,
		userRepo:       userRepo,
		settingService: settingService,
	}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// RegisterInput 注册参数
type RegisterInput struct {
	Email        string
	Password     string
	DisplayName  string
	ReferralCode string
	ClientIP     string
}

// GenerateUserJWT 签发推广用户令牌
func (s *UserAuthService) GenerateUserJWT(user *models.User) (string, time.Time, error) {
	now := time.Now()
	claims := UserJWTClaims{
		UserID:           user.ID,
		Email:            user.Email,
		TokenVersion:     user.TokenVersion,
		RegisteredClaims: registeredClaims(now, tokenTTL(s.cfg.UserJWT.ExpireHours)),
	}
	token, err := signHS256(s.cfg.UserJWT.SecretKey, claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// ParseUserJWT 解析推广用户令牌
func (s *UserAuthService) ParseUserJWT(token string) (*UserJWTClaims, error) {
	claims := &UserJWTClaims{}
	if err := parseHS256(s.cfg.UserJWT.SecretKey, token, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Register 用户注册；推荐码有效时建立推荐关系并做同 IP 作弊检测
func (s *UserAuthService) Register(input RegisterInput) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, input.Password); err != nil {
		return nil, "", time.Time{}, err
	}

	exist, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exist != nil {
		return nil, "", time.Time{}, ErrEmailExists
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	fingerprint := accountFingerprint(input.ClientIP, s.cfg.Fraud.IPSalt)
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = resolveNicknameFromEmail(normalized)
	}
	user := &models.User{
		Email:           normalized,
		PasswordHash:    hashedPassword,
		DisplayName:     displayName,
		Status:          constants.UserStatusActive,
		ReferralIPHash:  fingerprint,
		LastLoginIPHash: fingerprint,
		LastLoginAt:     &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.assignReferrer(user, input.ReferralCode, fingerprint, now); err != nil {
		return nil, "", time.Time{}, err
	}
	if err := s.createWithReferralCode(user); err != nil {
		return nil, "", time.Time{}, err
	}
	if user.ReferralFraudFlag {
		logger.Warnw("referral_fraud_flagged_on_register",
			"user_id", user.ID,
			"referrer_id", derefUint(user.ReferredByID),
			"reason", user.ReferralFraudReason,
		)
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.StorePrincipal(context.Background(), cache.UserPrincipal(user))
	return user, token, expiresAt, nil
}

func (s *UserAuthService) assignReferrer(user *models.User, referralCode, fingerprint string, now time.Time) error {
	code := strings.ToUpper(strings.TrimSpace(referralCode))
	if code == "" {
		return nil
	}
	referrer, err := s.userRepo.GetByReferralCode(code)
	if err != nil {
		return err
	}
	if referrer == nil || referrer.Status != constants.UserStatusActive {
		return nil
	}
	setting, err := s.settingService.GetReferralSetting()
	if err != nil {
		return err
	}

	referrerID := referrer.ID
	user.ReferredByID = &referrerID
	user.ReferralBonusExpires = setting.BonusExpiresAt(now)
	if flagged, reason := DetectReferralFraud(referrer, fingerprint); flagged {
		user.ReferralFraudFlag = true
		user.ReferralFraudReason = reason
	}
	return nil
}

func (s *UserAuthService) createWithReferralCode(user *models.User) error {
	for i := 0; i < referralCodeMaxRetries; i++ {
		code, err := generateReferralCode()
		if err != nil {
			return err
		}
		user.ReferralCode = code
		if err := s.userRepo.Create(user); err != nil {
			if repository.IsUniqueViolation(err) {
				existing, lookupErr := s.userRepo.GetByEmail(user.Email)
				if lookupErr == nil && existing != nil {
					return ErrEmailExists
				}
				user.ID = 0
				continue
			}
			return err
		}
		return nil
	}
	return ErrCodeExhausted
}

// Login 用户登录并记录登录 IP 指纹
func (s *UserAuthService) Login(email, password, clientIP string) (*models.User, string, time.Time, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	user, err := s.userRepo.GetByEmail(normalized)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if strings.ToLower(user.Status) != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrUserDisabled
	}
	if !passwordMatches(user.PasswordHash, password) {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.GenerateUserJWT(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	fingerprint := accountFingerprint(clientIP, s.cfg.Fraud.IPSalt)
	if err := s.userRepo.UpdateLogin(user.ID, fingerprint, now); err != nil {
		return nil, "", time.Time{}, err
	}
	user.LastLoginAt = &now
	user.LastLoginIPHash = fingerprint
	_ = cache.StorePrincipal(context.Background(), cache.UserPrincipal(user))
	return user, token, expiresAt, nil
}

// ChangePassword 登录态修改密码，旧 token 全部失效
func (s *UserAuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !passwordMatches(user.PasswordHash, oldPassword) {
		return ErrInvalidPassword
	}
	if err := validatePassword(s.cfg.Security.PasswordPolicy, newPassword); err != nil {
		return err
	}
	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	user.UpdatedAt = time.Now()
	user.TokenVersion++
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	_ = cache.StorePrincipal(context.Background(), cache.UserPrincipal(user))
	return nil
}

// GetUserByID 获取用户
func (s *UserAuthService) GetUserByID(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrInvalidEmail
	}
	if _, err := mail.ParseAddress(normalized); err != nil {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

func resolveNicknameFromEmail(email string) string {
	parts := strings.SplitN(email, "@", 2)
	if len(parts) == 2 && strings.TrimSpace(parts[0]) != "" {
		return strings.TrimSpace(parts[0])
	}
	return email
}

// generateReferralCode 8 位大写 hex
func generateReferralCode() (string, error) {
	buf := make([]byte, referralCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func derefUint(value *uint) uint {
	if value == nil {
		return 0
	}
	return *value
}
