package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/stream/internal/model"
)

func TestAccessPolicy_CanViewFeed(t *testing.T) {
	policy := NewAccessPolicy([]string{"administrator", "editor"})

	tests := []struct {
		name string
		user *model.User
		want bool
	}{
		{"nil user", nil, false},
		{"role in set", &model.User{Roles: []string{"editor"}}, true},
		{"one of several roles in set", &model.User{Roles: []string{"subscriber", "administrator"}}, true},
		{"role outside set", &model.User{Roles: []string{"subscriber"}}, false},
		{"empty role set", &model.User{Roles: nil}, false},
		{"super admin bypasses roles", &model.User{SuperAdmin: true}, true},
		{"super admin with denied role", &model.User{Roles: []string{"subscriber"}, SuperAdmin: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanViewFeed(tt.user))
		})
	}
}

func TestAccessPolicy_CanManageOwnKey(t *testing.T) {
	policy := NewAccessPolicy([]string{"editor"})

	assert.True(t, policy.CanManageOwnKey(&model.User{Roles: []string{"editor"}}))
	assert.False(t, policy.CanManageOwnKey(&model.User{Roles: []string{"subscriber"}}))
	assert.False(t, policy.CanManageOwnKey(nil))

	// No super-admin bypass on the management surface.
	assert.False(t, policy.CanManageOwnKey(&model.User{SuperAdmin: true}))
}
