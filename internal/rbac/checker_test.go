package rbac

import "testing"

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)
	tests := []struct {
		role, perm string
		want       bool
	}{
		{RoleStudent, "test:view", true},
		{RoleStudent, "test:submit", true},
		{RoleStudent, "test:create", false},
		{RoleStudent, "test:results", false},
		{RoleStudent, "submission:grade", false},
		{RoleStudent, "analytics:view", false},
		{RoleTeacher, "test:create", true},
		{RoleTeacher, "test:submit", false}, // teachers do not take tests
		{RoleTeacher, "assignment:delete", true},
		{RoleTeacher, "material:upload", true},
		{RoleTeacher, "gradebook:view", true},
		{"", "test:view", false},
		{"admin", "test:view", false},
	}
	for _, tc := range tests {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestMatchPerm(t *testing.T) {
	tests := []struct {
		pattern, perm string
		want          bool
	}{
		{"test:view", "test:view", true},
		{"test:view", "test:viewer", false},
		{"assignment:*", "assignment:create", true},
		{"assignment:*", "submission:create", false},
		{"*", "anything:at:all", true},
	}
	for _, tc := range tests {
		if got := matchPerm(tc.pattern, tc.perm); got != tc.want {
			t.Errorf("matchPerm(%q, %q) = %v, want %v", tc.pattern, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any(RoleStudent, "submission:grade", "test:submit") {
		t.Errorf("student should pass via test:submit")
	}
	if c.Any(RoleStudent, "submission:grade", "analytics:view") {
		t.Errorf("student has neither permission")
	}
}

func TestValidRole(t *testing.T) {
	for role, want := range map[string]bool{
		RoleTeacher: true,
		RoleStudent: true,
		"admin":     false,
		"":          false,
		"Teacher":   false,
	} {
		if got := ValidRole(role); got != want {
			t.Errorf("ValidRole(%q) = %v, want %v", role, got, want)
		}
	}
}
