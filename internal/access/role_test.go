package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Role
	}{
		{"owner", RoleOwner},
		{"Owner", RoleOwner},
		{"MANAGER", RoleManager},
		{"editor", RoleEditor},
		{"reviewer", RoleReviewer},
		{"viewer", RoleReviewer}, // legacy alias
		{" viewer ", RoleReviewer},
		{"", RoleNone},
		{"   ", RoleNone},
		{"Auditor", Role("auditor")}, // unknown tokens pass through lower-cased
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Normalize(tc.in), "Normalize(%q)", tc.in)
	}
}

func TestRoleAtLeast(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleOwner.AtLeast(RoleManager))
	assert.True(t, RoleManager.AtLeast(RoleManager))
	assert.False(t, RoleEditor.AtLeast(RoleManager))
	assert.False(t, RoleNone.AtLeast(RoleReviewer))
	// Pass-through tokens carry no rank.
	assert.False(t, Role("auditor").AtLeast(RoleReviewer))
}
