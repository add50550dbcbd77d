package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
)

func TestMembershipService_RoleOf(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	role, err := f.auth.RoleOf(ctx, projectID, managerID)
	if err != nil {
		t.Fatalf("RoleOf() = %v", err)
	}
	if role != membership.RoleManager {
		t.Errorf("role = %s, want manager", role)
	}

	if _, err := f.auth.RoleOf(ctx, projectID, outsider); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("RoleOf(outsider) = %v, want ErrNotFound", err)
	}
}

func TestMembershipService_Capabilities(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		userID    int64
		canManage bool
		isMember  bool
	}{
		{ownerID, true, true},
		{managerID, true, true},
		{memberID, false, true},
		{outsider, false, false},
	}

	for _, tt := range cases {
		canManage, err := f.auth.CanManage(ctx, projectID, tt.userID)
		if err != nil {
			t.Fatalf("CanManage(%d) = %v", tt.userID, err)
		}
		if canManage != tt.canManage {
			t.Errorf("CanManage(%d) = %v, want %v", tt.userID, canManage, tt.canManage)
		}

		isMember, err := f.auth.IsMember(ctx, projectID, tt.userID)
		if err != nil {
			t.Fatalf("IsMember(%d) = %v", tt.userID, err)
		}
		if isMember != tt.isMember {
			t.Errorf("IsMember(%d) = %v, want %v", tt.userID, isMember, tt.isMember)
		}
	}
}

func TestMembershipService_ListMembers(t *testing.T) {
	t.Parallel()

	f := newFixture()

	members, err := f.auth.ListMembers(context.Background(), projectID)
	if err != nil {
		t.Fatalf("ListMembers() = %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("len(members) = %d, want 3", len(members))
	}

	// Ordered by user ID.
	for i := 1; i < len(members); i++ {
		if members[i-1].UserID >= members[i].UserID {
			t.Errorf("members not ordered by user ID: %d before %d",
				members[i-1].UserID, members[i].UserID)
		}
	}
}
