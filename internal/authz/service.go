package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
)

// 角色即策略主体：持有至少一条策略的主体视为存在，不做角色继承
const accessModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

// ErrUnavailable 授权服务未初始化
var ErrUnavailable = errors.New("authz service unavailable")

// Policy 一条访问策略：角色可对路径模板执行的 HTTP 方法
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object"`
	Action  string `json:"action"`
}

// Service 基于 Casbin 的角色路由授权，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(accessModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return ErrUnavailable
	}
	return nil
}

// EnforceRole 判断角色能否以 act 方法访问 obj 路径
func (s *Service) EnforceRole(role, obj, act string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subject, NormalizeObject(obj), NormalizeAction(act))
}

// ListRoles 列出持有策略的角色，按名称排序
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subjects, err := s.enforcer.GetAllSubjects()
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roles := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		if strings.HasPrefix(subject, rolePrefix) {
			roles = append(roles, subject)
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// GetRolePolicies 查询角色的全部策略
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{Subject: rule[0], Object: rule[1], Action: rule[2]})
	}
	return policies, nil
}

// GrantRolePolicy 为角色新增一条策略，已存在时不做变更
func (s *Service) GrantRolePolicy(role, object, action string) error {
	policy, err := s.policyOf(role, object, action)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.AddPolicy(policy.Subject, policy.Object, policy.Action); err != nil {
		return fmt.Errorf("grant policy failed: %w", err)
	}
	return nil
}

// RevokeRolePolicy 撤销角色的一条策略
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	policy, err := s.policyOf(role, object, action)
	if err != nil {
		return err
	}
	if _, err := s.enforcer.RemovePolicy(policy.Subject, policy.Object, policy.Action); err != nil {
		return fmt.Errorf("revoke policy failed: %w", err)
	}
	return nil
}

// DeleteRole 删除自定义角色的全部策略，预置角色不可删除
func (s *Service) DeleteRole(role string) error {
	if err := s.ready(); err != nil {
		return err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	if isBuiltinRole(subject) {
		return fmt.Errorf("builtin role %s cannot be deleted", subject)
	}
	if _, err := s.enforcer.RemoveFilteredPolicy(0, subject); err != nil {
		return fmt.Errorf("remove role policy failed: %w", err)
	}
	return nil
}

func (s *Service) policyOf(role, object, action string) (Policy, error) {
	if err := s.ready(); err != nil {
		return Policy{}, err
	}
	subject, err := NormalizeRole(role)
	if err != nil {
		return Policy{}, err
	}
	act := NormalizeAction(action)
	if act == "" {
		return Policy{}, errors.New("action is required")
	}
	return Policy{Subject: subject, Object: NormalizeObject(object), Action: act}, nil
}

// NormalizeRole 统一为 role:<name> 形式
func NormalizeRole(role string) (string, error) {
	name := strings.TrimPrefix(strings.TrimSpace(role), rolePrefix)
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	if name == "" {
		return "", errors.New("role is required")
	}
	return rolePrefix + strings.ToLower(name), nil
}

// NormalizeObject 去掉 /api/v1 前缀，统一以 / 开头
func NormalizeObject(object string) string {
	path := strings.TrimSpace(object)
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == apiV1Prefix {
		return "/"
	}
	if strings.HasPrefix(path, apiV1Prefix+"/") {
		return strings.TrimPrefix(path, apiV1Prefix)
	}
	return path
}

// NormalizeAction HTTP 方法统一为大写，* 表示任意方法
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
