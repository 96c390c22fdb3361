package model

import "testing"

func TestValidRole(t *testing.T) {
	tests := []struct {
		role     string
		expected bool
	}{
		{RoleAdmin, true},
		{RoleManager, true},
		{"admin", false},
		{"", false},
		{"USER", false},
	}

	for _, tt := range tests {
		got := ValidRole(tt.role)
		if got != tt.expected {
			t.Errorf("ValidRole(%q) = %v, want %v", tt.role, got, tt.expected)
		}
	}
}

func TestRoleName(t *testing.T) {
	if got := RoleName(RoleAdmin); got != "Administrator" {
		t.Errorf("RoleName(ADMIN) = %q", got)
	}
	if got := RoleName("AUDITOR"); got != "AUDITOR" {
		t.Errorf("unknown roles should pass through, got %q", got)
	}
}
