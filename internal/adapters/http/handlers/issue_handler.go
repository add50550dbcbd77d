package handlers

import (
	"fmt"
	"net/http"

	"github.com/teamsuite/workflow-core/internal/adapters/http/dto"
	"github.com/teamsuite/workflow-core/internal/domain"
	"github.com/teamsuite/workflow-core/internal/domain/issue"
	"github.com/teamsuite/workflow-core/internal/ports"
)

// IssueHandler handles HTTP requests for issue creation and triage.
type IssueHandler struct {
	svc ports.IssueService
}

// NewIssueHandler creates a new IssueHandler with the given service port.
func NewIssueHandler(svc ports.IssueService) *IssueHandler {
	return &IssueHandler{svc: svc}
}

// Create handles POST /api/v1/issues.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	var req dto.CreateIssueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.svc.Create(r.Context(), actor, req.Input())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToIssueResponse(created))
}

// Get handles GET /api/v1/issues/{id}.
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	iss, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIssueResponse(iss))
}

// ListByProject handles GET /api/v1/projects/{projectId}/issues.
//
// Supported query parameters: sprint_id, status_id, assignee_id (integers),
// priority (string), backlog=true for issues outside any sprint.
func (h *IssueHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	projectID, err := parseID(r, "projectId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	f, err := issueFilterFromQuery(r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	issues, err := h.svc.List(r.Context(), actor, projectID, f)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIssueListResponse(issues))
}

// Update handles PATCH /api/v1/issues/{id}.
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateIssueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), actor, id, req.Input())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIssueResponse(updated))
}

// Assign handles PUT /api/v1/issues/{id}/assignee.
func (h *IssueHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.AssignIssueRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.Assign(r.Context(), actor, id, req.AssigneeID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIssueResponse(updated))
}

// ChangeStatus handles PUT /api/v1/issues/{id}/status.
func (h *IssueHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(w, r)
	if !ok {
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.ChangeIssueStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.ChangeStatus(r.Context(), actor, id, req.StatusID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToIssueResponse(updated))
}

// issueFilterFromQuery builds an issue filter from list query parameters.
// The project scope itself comes from the path, not the filter.
func issueFilterFromQuery(r *http.Request) (issue.Filter, error) {
	var f issue.Filter

	sprintID, err := queryInt64(r, "sprint_id")
	if err != nil {
		return f, err
	}
	statusID, err := queryInt64(r, "status_id")
	if err != nil {
		return f, err
	}
	assigneeID, err := queryInt64(r, "assignee_id")
	if err != nil {
		return f, err
	}

	if raw := r.URL.Query().Get("priority"); raw != "" {
		p := issue.Priority(raw)
		if !p.IsValid() {
			return f, &domain.ValidationError{
				Fields: map[string]string{"priority": fmt.Sprintf("invalid: %q", raw)},
			}
		}
		f.Priority = p
	}

	f.SprintID = sprintID
	f.StatusID = statusID
	f.AssigneeID = assigneeID
	f.Backlog = r.URL.Query().Get("backlog") == "true"
	return f, nil
}
