// Package app provides application services that implement the workflow
// core: the membership authority, the sprint lifecycle manager, the issue
// registry, and the consistency sweeper. Services coordinate between domain
// logic and infrastructure through port interfaces.
package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/membership"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// Compile-time check that MembershipService implements ports.MembershipService.
var _ ports.MembershipService = (*MembershipService)(nil)

// MembershipService resolves membership roles and capabilities. It is a pure
// read over the membership store; provisioning of memberships happens in an
// external flow.
type MembershipService struct {
	store  ports.MembershipStore
	logger *slog.Logger
}

// NewMembershipService creates a MembershipService. A nil logger is replaced
// with a no-op logger.
func NewMembershipService(store ports.MembershipStore, logger *slog.Logger) *MembershipService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MembershipService{
		store:  store,
		logger: logger,
	}
}

// RoleOf returns the user's role within the project.
func (s *MembershipService) RoleOf(ctx context.Context, projectID, userID int64) (membership.Role, error) {
	m, err := s.store.GetMembership(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	return m.Role, nil
}

// CanManage reports whether the user holds the owner or manager role in the
// project. A missing membership yields false rather than an error.
func (s *MembershipService) CanManage(ctx context.Context, projectID, userID int64) (bool, error) {
	role, err := s.RoleOf(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return role.CanManage(), nil
}

// IsMember reports whether the user holds any role in the project.
func (s *MembershipService) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	_, err := s.RoleOf(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListMembers returns all memberships of the project.
func (s *MembershipService) ListMembers(ctx context.Context, projectID int64) ([]membership.Membership, error) {
	members, err := s.store.ListMemberships(ctx, projectID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list memberships",
			slog.String("operation", "ListMembers"),
			slog.Int64("project_id", projectID),
			slog.Any("error", err),
		)
		return nil, err
	}
	return members, nil
}
