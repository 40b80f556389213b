package seeder

import (
	"testing"
)

func TestDemoID_StableAndDistinct(t *testing.T) {
	a := demoID("user", "Ada@devlink.test")
	b := demoID("user", "ada@devlink.test")
	if a != b {
		t.Fatalf("expected case-insensitive stable id")
	}
	if demoID("profile", "ada@devlink.test") == a {
		t.Fatalf("expected different ids per kind")
	}
}

func TestTables_CoverEveryAccount(t *testing.T) {
	for _, table := range []string{"users", "profiles"} {
		if len(Tables[table]) == 0 {
			t.Fatalf("missing column list for %s", table)
		}
	}
	for _, a := range demoAccounts {
		if a.Status == "" || len(a.Skills) == 0 {
			t.Fatalf("demo account %s would violate profile requirements", a.Email)
		}
	}
}
