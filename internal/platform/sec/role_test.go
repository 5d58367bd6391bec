// Copyright (c) 2026 AgentDesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/agentdesk/internal/platform/sec"
)

/*
TestSatisfies_AllPairs checks every pair of roles against the rank order.
*/
func TestSatisfies_AllPairs(t *testing.T) {
	ranks := map[sec.Role]int{
		sec.RoleOwner:  3,
		sec.RoleAdmin:  2,
		sec.RoleMember: 1,
	}

	for _, actual := range sec.Roles {
		for _, required := range sec.Roles {
			t.Run(string(actual)+"_vs_"+string(required), func(t *testing.T) {
				expected := ranks[actual] >= ranks[required]
				assert.Equal(t, expected, sec.Satisfies(actual, required))
				assert.Equal(t, expected, actual.AtLeast(required))
			})
		}
	}
}

/*
TestSatisfies_Examples pins the concrete cases callers rely on.
*/
func TestSatisfies_Examples(t *testing.T) {
	assert.True(t, sec.Satisfies(sec.RoleOwner, sec.RoleMember))
	assert.False(t, sec.Satisfies(sec.RoleMember, sec.RoleAdmin))
	assert.True(t, sec.Satisfies(sec.RoleAdmin, sec.RoleAdmin))
}

/*
TestRole_UnknownPanics verifies that values outside the enumeration fail fast.
*/
func TestRole_UnknownPanics(t *testing.T) {
	assert.Panics(t, func() { _ = sec.Role("superuser").Rank() })
	assert.Panics(t, func() { sec.Satisfies(sec.Role(""), sec.RoleMember) })
	assert.Panics(t, func() { sec.Satisfies(sec.RoleOwner, sec.Role("root")) })
}

/*
TestParseRole covers accepted and rejected inputs.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    sec.Role
		isValid bool
	}{
		{"owner", sec.RoleOwner, true},
		{"admin", sec.RoleAdmin, true},
		{"member", sec.RoleMember, true},
		{"Owner", "", false},
		{"", "", false},
		{"moderator", "", false},
	}

	for _, tt := range tests {
		t.Run("input_"+tt.input, func(t *testing.T) {
			role, err := sec.ParseRole(tt.input)
			if !tt.isValid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}
