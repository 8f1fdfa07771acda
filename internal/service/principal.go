package service

import (
	"context"
	"strings"

	"github.com/clickvault/internal/cache"
	"github.com/clickvault/internal/constants"
	"github.com/clickvault/internal/logger"
)

// resolvePrincipal 先读身份快照，未命中时回源并回填
func resolvePrincipal(ctx context.Context, kind cache.PrincipalKind, id uint, load func() (*cache.Principal, error)) (*cache.Principal, error) {
	if p, hit, err := cache.LoadPrincipal(ctx, kind, id); err == nil && hit {
		return p, nil
	} else if err != nil {
		logger.Warnw("principal_cache_read_failed", "kind", kind, "id", id, "error", err)
	}
	p, err := load()
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrInvalidToken
	}
	_ = cache.StorePrincipal(ctx, p)
	return p, nil
}

// Authenticate 校验管理员令牌，token 版本落后即视为已吊销
func (s *AuthService) Authenticate(ctx context.Context, token string) (*cache.Principal, error) {
	if s == nil || s.cfg == nil || strings.TrimSpace(s.cfg.JWT.SecretKey) == "" {
		return nil, ErrAuthNotConfigured
	}
	claims, err := s.ParseJWT(token)
	if err != nil || claims.AdminID == 0 {
		return nil, ErrInvalidToken
	}
	p, err := resolvePrincipal(ctx, cache.PrincipalAdmin, claims.AdminID, func() (*cache.Principal, error) {
		admin, err := s.adminRepo.GetByID(claims.AdminID)
		if err != nil {
			return nil, err
		}
		return cache.AdminPrincipal(admin), nil
	})
	if err != nil {
		return nil, err
	}
	if p.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	return p, nil
}

// Authenticate 校验推广用户令牌；被停用（含推荐作弊处置）的账号直接拒绝
func (s *UserAuthService) Authenticate(ctx context.Context, token string) (*cache.Principal, error) {
	if s == nil || s.cfg == nil || strings.TrimSpace(s.cfg.UserJWT.SecretKey) == "" {
		return nil, ErrAuthNotConfigured
	}
	claims, err := s.ParseUserJWT(token)
	if err != nil || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	p, err := resolvePrincipal(ctx, cache.PrincipalUser, claims.UserID, func() (*cache.Principal, error) {
		user, err := s.userRepo.GetByID(claims.UserID)
		if err != nil {
			return nil, err
		}
		return cache.UserPrincipal(user), nil
	})
	if err != nil {
		return nil, err
	}
	if strings.ToLower(strings.TrimSpace(p.Status)) != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}
	if p.TokenVersion != claims.TokenVersion {
		return nil, ErrTokenRevoked
	}
	return p, nil
}
