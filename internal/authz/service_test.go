package authz

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	return svc
}

func TestEnforceRoleWithGrantedPolicy(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("kitchen", "/admin/orders/:id", "GET"); err != nil {
		t.Fatalf("grant role policy failed: %v", err)
	}

	allow, err := svc.EnforceRole("kitchen", "/api/v1/admin/orders/42", "get")
	if err != nil {
		t.Fatalf("enforce allow failed: %v", err)
	}
	if !allow {
		t.Fatalf("expected allow=true")
	}

	allow, err = svc.EnforceRole("kitchen", "/api/v1/admin/orders/42/status", "PATCH")
	if err != nil {
		t.Fatalf("enforce deny failed: %v", err)
	}
	if allow {
		t.Fatalf("expected allow=false")
	}

	if err := svc.RevokeRolePolicy("kitchen", "/admin/orders/:id", "GET"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	allow, err = svc.EnforceRole("kitchen", "/admin/orders/42", "GET")
	if err != nil || allow {
		t.Fatalf("expected revoked policy to deny, allow=%v err=%v", allow, err)
	}
}

func TestNormalizeObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "/api/v1/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "/admin/orders/:id", want: "/admin/orders/:id"},
		{in: "admin/orders", want: "/admin/orders"},
		{in: "/api/v1", want: "/"},
		{in: "", want: "/"},
	}
	for _, item := range cases {
		got := NormalizeObject(item.in)
		if got != item.want {
			t.Fatalf("normalize object failed, in=%q want=%q got=%q", item.in, item.want, got)
		}
	}
}

func TestBootstrapBuiltinRoles(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap builtin roles failed: %v", err)
	}
	// 重复初始化不应报错
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(roles) != 2 || roles[0] != "role:customer" || roles[1] != "role:owner" {
		t.Fatalf("unexpected builtin roles: %v", roles)
	}

	cases := []struct {
		role  string
		obj   string
		act   string
		allow bool
	}{
		{"owner", "/api/v1/admin/orders/7/status", "PATCH", true},
		{"owner", "/api/v1/admin/settings", "PUT", true},
		{"customer", "/api/v1/me/orders", "GET", true},
		{"customer", "/api/v1/me", "GET", true},
		{"customer", "/api/v1/admin/orders", "GET", false},
		{"customer", "/api/v1/me/orders", "DELETE", false},
		{"owner", "/api/v1/me/orders", "GET", false},
	}
	for _, tc := range cases {
		allow, err := svc.EnforceRole(tc.role, tc.obj, tc.act)
		if err != nil {
			t.Fatalf("enforce %s %s %s failed: %v", tc.role, tc.act, tc.obj, err)
		}
		if allow != tc.allow {
			t.Fatalf("%s %s %s: want allow=%v, got %v", tc.role, tc.act, tc.obj, tc.allow, allow)
		}
	}

	if err := svc.DeleteRole("owner"); err == nil {
		t.Fatalf("builtin roles must not be deletable")
	}
	policies, err := svc.GetRolePolicies("owner")
	if err != nil || len(policies) != 1 || policies[0].Object != "/admin/*" {
		t.Fatalf("unexpected owner policies %+v (%v)", policies, err)
	}
}

func TestDeleteCustomRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.GrantRolePolicy("kitchen", "/admin/orders", "GET"); err != nil {
		t.Fatalf("grant failed: %v", err)
	}
	if err := svc.DeleteRole("kitchen"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(roles) != 0 {
		t.Fatalf("expected no roles, got %v", roles)
	}
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"owner":         "role:owner",
		" role:Owner ":  "role:owner",
		"kitchen staff": "role:kitchen_staff",
	}
	for in, want := range cases {
		got, err := NormalizeRole(in)
		if err != nil || got != want {
			t.Fatalf("normalize role %q: want %q got %q (%v)", in, want, got, err)
		}
	}
	for _, bad := range []string{"", "role:", "   "} {
		if _, err := NormalizeRole(bad); err == nil {
			t.Fatalf("normalize role %q should fail", bad)
		}
	}
}

func TestNilServiceIsUnavailable(t *testing.T) {
	var svc *Service
	if _, err := svc.EnforceRole("owner", "/admin/orders", "GET"); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := svc.GrantRolePolicy("owner", "/admin/*", "*"); err != ErrUnavailable {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
