// Package handlers provides HTTP request handlers for the service's API endpoints.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/teamsuite/workflow-core/internal/adapters/http/dto"
	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/sprint"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// SprintHandler handles HTTP requests for sprint lifecycle and
// sprint-issue association operations.
type SprintHandler struct {
	sprints ports.SprintService
	members ports.MembershipService
}

// NewSprintHandler creates a new SprintHandler with the given service ports.
func NewSprintHandler(sprints ports.SprintService, members ports.MembershipService) *SprintHandler {
	return &SprintHandler{sprints: sprints, members: members}
}

// Create handles POST /api/v1/sprints.
func (h *SprintHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req dto.CreateSprintRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.sprints.Create(r.Context(), actor, req.Input())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToSprintResponse(created))
}

// Get handles GET /api/v1/sprints/{id}.
func (h *SprintHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	sp, err := h.sprints.Get(r.Context(), actor, id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSprintResponse(sp))
}

// ListByProject handles GET /api/v1/projects/{projectId}/sprints.
func (h *SprintHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	projectID, err := parseID(r, "projectId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	sprints, err := h.sprints.ListByProject(r.Context(), actor, projectID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSprintListResponse(sprints))
}

// Start handles POST /api/v1/sprints/{id}/start.
func (h *SprintHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sprints.Start)
}

// Complete handles POST /api/v1/sprints/{id}/complete.
func (h *SprintHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sprints.Complete)
}

// Cancel handles POST /api/v1/sprints/{id}/cancel.
func (h *SprintHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.sprints.Cancel)
}

// Delete handles DELETE /api/v1/sprints/{id}.
func (h *SprintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.sprints.Delete(r.Context(), actor, id); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddIssue handles POST /api/v1/sprints/{id}/issues.
func (h *SprintHandler) AddIssue(w http.ResponseWriter, r *http.Request) {
	h.issueAssociation(w, r, h.sprints.AddIssue)
}

// RemoveIssue handles DELETE /api/v1/sprints/{id}/issues/{issueId}.
func (h *SprintHandler) RemoveIssue(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	sprintID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	issueID, err := parseID(r, "issueId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.sprints.RemoveIssue(r.Context(), actor, sprintID, issueID); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListMembers handles GET /api/v1/projects/{projectId}/members.
func (h *SprintHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	projectID, err := parseID(r, "projectId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	// Membership lists are visible to members only.
	isMember, err := h.members.IsMember(r.Context(), projectID, actor)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}
	if !isMember {
		dto.WriteErrorResponse(w, r,
			fmt.Errorf("user is not a member of project %d: %w", projectID, domain.ErrAccessDenied))
		return
	}

	members, err := h.members.ListMembers(r.Context(), projectID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMemberListResponse(members))
}

// transition runs one of the sprint lifecycle operations (start, complete,
// cancel) that share the {id} path shape and response.
func (h *SprintHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actorID, sprintID int64) (*sprint.Sprint, error),
) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	sp, err := op(r.Context(), actor, id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSprintResponse(sp))
}

// issueAssociation runs AddIssue-shaped operations that take a JSON body
// naming the issue.
func (h *SprintHandler) issueAssociation(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actorID, sprintID, issueID int64) error,
) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	sprintID, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.SprintIssueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := op(r.Context(), actor, sprintID, req.IssueID); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
