package membership_test

import (
	"testing"

	"github.com/teamsuite/workflow-core/internal/domain/membership"
)

func TestRole_CanManage(t *testing.T) {
	t.Parallel()

	cases := map[membership.Role]bool{
		membership.RoleOwner:   true,
		membership.RoleManager: true,
		membership.RoleMember:  false,
	}

	for role, want := range cases {
		if got := role.CanManage(); got != want {
			t.Errorf("CanManage(%s) = %v, want %v", role, got, want)
		}
	}
}

func TestRole_IsValid(t *testing.T) {
	t.Parallel()

	for _, role := range []membership.Role{
		membership.RoleOwner, membership.RoleManager, membership.RoleMember,
	} {
		if !role.IsValid() {
			t.Errorf("IsValid(%s) = false, want true", role)
		}
	}

	if membership.Role("admin").IsValid() {
		t.Error(`IsValid("admin") = true, want false`)
	}
}
