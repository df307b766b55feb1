package repository

import (
	"testing"
)

func TestBuildLikeConditionSQLite(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"name", " ", "description"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)"
	if condition != want {
		t.Fatalf("condition want %s got %s", want, condition)
	}
}

func TestBuildLikeConditionPostgres(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("postgres", []string{"customer_email"})
	if argCount != 1 || condition != "(customer_email ILIKE ?)" {
		t.Fatalf("unexpected postgres condition %s (%d)", condition, argCount)
	}
	if condition, argCount := buildLikeConditionByDialect("postgres", nil); condition != "" || argCount != 0 {
		t.Fatalf("empty columns should build nothing")
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%chai%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%chai%" {
			t.Fatalf("args[%d] want %%chai%% got %v", idx, arg)
		}
	}
}
