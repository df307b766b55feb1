package authz

import (
	"fmt"

	"github.com/jaisdevansh/monu-bhiya/internal/constants"
)

// builtinPolicies 预置角色：店主管理整个后台，顾客只读自己的资料与订单
var builtinPolicies = map[string][]Policy{
	constants.RoleOwner: {
		{Object: "/admin/*", Action: "*"},
	},
	constants.RoleCustomer: {
		{Object: "/me", Action: "GET"},
		{Object: "/me/*", Action: "GET"},
	},
}

// BootstrapBuiltinRoles 补齐预置策略，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for role, policies := range builtinPolicies {
		for _, policy := range policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("bootstrap role %s failed: %w", role, err)
			}
		}
	}
	return nil
}

func isBuiltinRole(subject string) bool {
	for role := range builtinPolicies {
		if normalized, err := NormalizeRole(role); err == nil && normalized == subject {
			return true
		}
	}
	return false
}
