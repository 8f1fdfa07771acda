package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/clickvault/internal/models"
)

const principalTTL = 10 * time.Minute

// PrincipalKind 登录身份类别
type PrincipalKind string

const (
	PrincipalAdmin PrincipalKind = "admin"
	PrincipalUser  PrincipalKind = "user"
)

// Principal 令牌校验所需的身份快照；TokenVersion 变化即视为吊销
type Principal struct {
	Kind         PrincipalKind `json:"kind"`
	ID           uint          `json:"id"`
	Name         string        `json:"name"`
	Status       string        `json:"status,omitempty"`
	IsSuper      bool          `json:"is_super,omitempty"`
	TokenVersion uint64        `json:"token_version"`
}

func principalKey(kind PrincipalKind, id uint) string {
	return "principal:" + string(kind) + ":" + strconv.FormatUint(uint64(id), 10)
}

// AdminPrincipal 管理员快照
func AdminPrincipal(admin *models.Admin) *Principal {
	if admin == nil {
		return nil
	}
	return &Principal{
		Kind:         PrincipalAdmin,
		ID:           admin.ID,
		Name:         admin.Username,
		IsSuper:      admin.IsSuper,
		TokenVersion: admin.TokenVersion,
	}
}

// UserPrincipal 推广用户快照
func UserPrincipal(user *models.User) *Principal {
	if user == nil {
		return nil
	}
	return &Principal{
		Kind:         PrincipalUser,
		ID:           user.ID,
		Name:         user.Email,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
	}
}

// LoadPrincipal 读取身份快照
func LoadPrincipal(ctx context.Context, kind PrincipalKind, id uint) (*Principal, bool, error) {
	if id == 0 {
		return nil, false, nil
	}
	var p Principal
	hit, err := getJSON(ctx, principalKey(kind, id), &p)
	if err != nil || !hit {
		return nil, false, err
	}
	return &p, true, nil
}

// StorePrincipal 写入身份快照
func StorePrincipal(ctx context.Context, p *Principal) error {
	if p == nil || p.ID == 0 {
		return nil
	}
	return setJSON(ctx, principalKey(p.Kind, p.ID), p, principalTTL)
}

// ForgetPrincipal 删除身份快照，下次校验回源数据库
func ForgetPrincipal(ctx context.Context, kind PrincipalKind, id uint) error {
	if id == 0 {
		return nil
	}
	return del(ctx, principalKey(kind, id))
}
