package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
		wantErr  bool
	}{
		{input: "EMPLOYEE", expected: RoleEmployee},
		{input: "MANAGER", expected: RoleManager},
		{input: "GENERAL_MANAGER", expected: RoleGeneralManager},
		{input: "ADMIN", expected: RoleAdmin},
		{input: "admin", wantErr: true},
		{input: "", wantErr: true},
		{input: "SUPERUSER", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			role, err := ParseRole(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, role)
			assert.Equal(t, tt.input, role.String())
		})
	}
}

func TestCanDecide(t *testing.T) {
	assert.False(t, RoleEmployee.CanDecide())
	assert.True(t, RoleManager.CanDecide())
	assert.True(t, RoleGeneralManager.CanDecide())
	assert.True(t, RoleAdmin.CanDecide())
}

func TestScopeFor(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		role     Role
		expected Kind
	}{
		{name: "admin sees everything", role: RoleAdmin, expected: KindAll},
		{name: "general manager sees everything", role: RoleGeneralManager, expected: KindAll},
		{name: "manager sees the department", role: RoleManager, expected: KindDepartment},
		{name: "employee sees own rows", role: RoleEmployee, expected: KindPersonal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope := ScopeFor(tt.role, "IT", userID)
			assert.Equal(t, tt.expected, scope.Kind)
		})
	}

	// Unknown roles collapse to the narrowest scope.
	scope := ScopeFor(Role(99), "IT", userID)
	assert.Equal(t, KindPersonal, scope.Kind)
	assert.Equal(t, userID, scope.UserID)
}

func TestScopeAllows(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	all := Scope{Kind: KindAll}
	assert.True(t, all.Allows(owner, "IT"))
	assert.True(t, all.Allows(other, "HR"))

	department := Scope{Kind: KindDepartment, Department: "IT", UserID: other}
	assert.True(t, department.Allows(owner, "IT"))
	assert.False(t, department.Allows(owner, "HR"))

	personal := Scope{Kind: KindPersonal, UserID: owner}
	assert.True(t, personal.Allows(owner, "IT"))
	assert.False(t, personal.Allows(other, "IT"))
}
