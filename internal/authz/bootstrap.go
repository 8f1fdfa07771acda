package authz

import "fmt"

// RoleSeed 预置角色
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
}

func grants(action string, objects ...string) []Policy {
	policies := make([]Policy, 0, len(objects))
	for _, object := range objects {
		policies = append(policies, Policy{Object: object, Action: action})
	}
	return policies
}

// BuiltinRoleSeeds 预置角色：只读审计为基础，其余按业务线叠加写权限
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role:     "readonly_auditor",
			Policies: grants("GET", "/admin/*"),
		},
		{
			Role:     "rates_manager",
			Inherits: []string{"readonly_auditor"},
			Policies: append(
				grants("POST", "/admin/cpm-rates", "/admin/cpm-rates/seed", "/admin/cpm-rates/:code/verify"),
				append(
					grants("PUT", "/admin/cpm-rates/:code"),
					grants("PATCH", "/admin/cpm-rates/:code/status")...,
				)...,
			),
		},
		{
			Role:     "fraud_reviewer",
			Inherits: []string{"readonly_auditor"},
			Policies: grants("POST",
				"/admin/referrals/:id/flag",
				"/admin/referrals/:id/resolve",
				"/admin/visits/:id/decrypt-ip",
				"/admin/visit-events/:id/requeue",
			),
		},
		{
			Role:     "finance",
			Inherits: []string{"readonly_auditor"},
			Policies: append(
				grants("POST",
					"/admin/payouts/:id/processing",
					"/admin/payouts/:id/complete",
					"/admin/payouts/:id/reject",
					"/admin/users/:id/balance-adjustments",
				),
				grants("PUT", "/admin/settings/referral")...,
			),
		},
	}
}

// IsImmutableRole 预置角色不可删除
func IsImmutableRole(role string) bool {
	name, err := NormalizeRole(role)
	if err != nil {
		return false
	}
	for _, seed := range BuiltinRoleSeeds() {
		if seedName, _ := NormalizeRole(seed.Role); seedName == name {
			return true
		}
	}
	return false
}

// BootstrapBuiltinRoles 幂等写入预置角色、继承关系与策略
func (s *Service) BootstrapBuiltinRoles() error {
	e, err := s.ready()
	if err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("seed role %s: %w", seed.Role, err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return fmt.Errorf("seed role %s parent: %w", seed.Role, err)
			}
			if _, err := e.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("seed role %s policy: %w", seed.Role, err)
			}
		}
	}
	return nil
}
