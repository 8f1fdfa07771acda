package admin

import (
	"errors"
	"net/url"
	"strings"

	"github.com/clickvault/internal/authz"
	"github.com/clickvault/internal/constants"
	handlershared "github.com/clickvault/internal/http/handlers/shared"
	"github.com/clickvault/internal/http/response"
	"github.com/clickvault/internal/models"
	"github.com/clickvault/internal/service"

	"github.com/gin-gonic/gin"
)

var authzErrorRules = []handlershared.MappedError{
	{Target: authz.ErrImmutableRole, Code: response.CodeForbidden, Key: "error.role_immutable"},
	{Target: authz.ErrRoleRequired, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrReservedRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: authz.ErrActionRequired, Code: response.CodeBadRequest, Key: "error.bad_request"},
}

type createAdminPayload struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Roles    []string `json:"roles"`
}

type setAdminRolesPayload struct {
	Roles []string `json:"roles"`
}

// GetAdminMe 当前管理员权限快照
func (h *Handler) GetAdminMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	roles, err := h.AuthzService.GetAdminRoles(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	policies, err := h.AuthzService.GetAdminPolicies(adminID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"admin_id": adminID,
		"is_super": adminIsSuper(c),
		"roles":    roles,
		"policies": policies,
	})
}

// ListRoles 角色列表
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	response.Success(c, roles)
}

// GetRolePolicies 角色策略
func (h *Handler) GetRolePolicies(c *gin.Context) {
	role, err := url.PathUnescape(c.Param("role"))
	if err != nil || strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(strings.TrimSpace(role))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	response.Success(c, policies)
}

// ListAdmins 管理员列表（含角色）
func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.AuthService.ListAdmins()
	if err != nil {
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	items := make([]gin.H, 0, len(admins))
	for _, admin := range admins {
		roles, roleErr := h.AuthzService.GetAdminRoles(admin.ID)
		if roleErr != nil {
			respondError(c, response.CodeInternal, "error.authz_fetch_failed", roleErr)
			return
		}
		items = append(items, gin.H{
			"id":            admin.ID,
			"username":      admin.Username,
			"is_super":      admin.IsSuper,
			"last_login_at": admin.LastLoginAt,
			"created_at":    admin.CreatedAt,
			"roles":         roles,
		})
	}
	response.Success(c, items)
}

// CreateAdmin 创建普通管理员，可同时授予角色
func (h *Handler) CreateAdmin(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req createAdminPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	admin, err := h.AuthService.CreateAdmin(req.Username, req.Password)
	if err != nil {
		if respondAdminPasswordPolicyError(c, err) {
			return
		}
		switch {
		case errors.Is(err, service.ErrAdminExists):
			respondError(c, response.CodeConflict, "error.admin_exists", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		default:
			respondError(c, response.CodeInternal, "error.admin_create_failed", err)
		}
		return
	}
	if len(req.Roles) > 0 {
		if err := h.AuthzService.SetAdminRoles(admin.ID, req.Roles); err != nil {
			respondError(c, response.CodeBadRequest, "error.role_invalid", err)
			return
		}
	}
	h.recordAdminAction(c, operatorID, constants.AdminActionAdminCreate, "admin", admin.ID, models.JSON{
		"username": admin.Username,
		"roles":    req.Roles,
	})
	response.Success(c, admin)
}

// SetAdminRoles 覆盖管理员角色
func (h *Handler) SetAdminRoles(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	targetID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req setAdminRolesPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if _, err := h.AuthService.GetAdmin(targetID); err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			respondError(c, response.CodeNotFound, "error.admin_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.admin_fetch_failed", err)
		return
	}
	before, _ := h.AuthzService.GetAdminRoles(targetID)
	if err := h.AuthzService.SetAdminRoles(targetID, req.Roles); err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	after, err := h.AuthzService.GetAdminRoles(targetID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.authz_fetch_failed", err)
		return
	}
	h.recordAdminAction(c, operatorID, constants.AdminActionAdminRolesSet, "admin", targetID, models.JSON{
		"before": before,
		"after":  after,
	})
	response.Success(c, gin.H{"admin_id": targetID, "roles": after})
}

// recordAdminAction 事务外的审计写入，失败只记录日志
func (h *Handler) recordAdminAction(c *gin.Context, adminID uint, action, targetType string, targetID interface{}, detail models.JSON) {
	if h == nil || h.AdminActionService == nil {
		return
	}
	if err := h.AdminActionService.Record(adminID, action, targetType, targetID, detail); err != nil {
		requestLog(c).Warnw("admin_action_record_failed",
			"admin_id", adminID,
			"action", action,
			"error", err,
		)
	}
}

type rolePayload struct {
	Role string `json:"role" binding:"required"`
}

type policyPayload struct {
	Role   string `json:"role" binding:"required"`
	Object string `json:"object" binding:"required"`
	Action string `json:"action" binding:"required"`
}

// CreateRole 新建自定义角色
func (h *Handler) CreateRole(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req rolePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	role, err := h.AuthzService.EnsureRole(req.Role)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.role_invalid", err)
		return
	}
	h.recordAdminAction(c, operatorID, constants.AdminActionRoleCreate, "role", role, nil)
	response.Success(c, gin.H{"role": role})
}

// DeleteRole 删除自定义角色，预置角色不可删除
func (h *Handler) DeleteRole(c *gin.Context) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	role, err := url.PathUnescape(c.Param("role"))
	if err != nil || strings.TrimSpace(role) == "" {
		respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
		return
	}
	if err := h.AuthzService.DeleteRole(role); err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_save_failed")
		return
	}
	h.recordAdminAction(c, operatorID, constants.AdminActionRoleDelete, "role", role, nil)
	response.Success(c, gin.H{"role": role, "deleted": true})
}

// GrantPolicy 为角色授予接口权限
func (h *Handler) GrantPolicy(c *gin.Context) {
	h.changePolicy(c, true)
}

// RevokePolicy 撤销角色接口权限
func (h *Handler) RevokePolicy(c *gin.Context) {
	h.changePolicy(c, false)
}

func (h *Handler) changePolicy(c *gin.Context, grant bool) {
	operatorID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req policyPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	action := constants.AdminActionPolicyGrant
	var err error
	if grant {
		err = h.AuthzService.GrantRolePolicy(req.Role, req.Object, req.Action)
	} else {
		action = constants.AdminActionPolicyRevoke
		err = h.AuthzService.RevokeRolePolicy(req.Role, req.Object, req.Action)
	}
	if err != nil {
		respondMappedError(c, err, authzErrorRules, response.CodeInternal, "error.authz_save_failed")
		return
	}
	h.recordAdminAction(c, operatorID, action, "role", req.Role, models.JSON{
		"object": authz.NormalizeObject(req.Object),
		"action": authz.NormalizeAction(req.Action),
	})
	response.Success(c, gin.H{"role": req.Role, "granted": grant})
}
