package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in    string
		want  Role
		known bool
	}{
		{"STUDENT", RoleStudent, true},
		{" teacher ", RoleTeacher, true},
		{"Admin", RoleAdmin, true},
		{"JANITOR", Role("JANITOR"), false},
		{"", Role(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestAuthState_IsAuthenticatedDerivedFromUser(t *testing.T) {
	var s AuthState
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, Role(""), s.Role())

	s.User = &UserIdentity{ID: "1", Role: RoleTeacher}
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, RoleTeacher, s.Role())
}

func TestUnknownRolePolicy_UnmarshalText(t *testing.T) {
	var p UnknownRolePolicy
	require.NoError(t, p.UnmarshalText([]byte("SUPPORT")))
	assert.Equal(t, UnknownRoleSupport, p)

	require.NoError(t, p.UnmarshalText([]byte("")))
	assert.Equal(t, UnknownRoleLogin, p)

	assert.Error(t, p.UnmarshalText([]byte("teapot")))
}
