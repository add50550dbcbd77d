// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamsuite/workflow-core/internal/adapters/http/handlers"
	"github.com/teamsuite/workflow-core/internal/adapters/http/middleware"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given; the actor middleware is
// applied to the API routes only, so health probes need no identity header.
func NewRouter(
	sprintHandler *handlers.SprintHandler,
	issueHandler *handlers.IssueHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor())

		// Project-scoped reads.
		r.Get("/projects/{projectId}/sprints", sprintHandler.ListByProject)
		r.Get("/projects/{projectId}/issues", issueHandler.ListByProject)
		r.Get("/projects/{projectId}/members", sprintHandler.ListMembers)

		// Sprint lifecycle.
		r.Post("/sprints", sprintHandler.Create)
		r.Get("/sprints/{id}", sprintHandler.Get)
		r.Post("/sprints/{id}/start", sprintHandler.Start)
		r.Post("/sprints/{id}/complete", sprintHandler.Complete)
		r.Post("/sprints/{id}/cancel", sprintHandler.Cancel)
		r.Delete("/sprints/{id}", sprintHandler.Delete)

		// Sprint-issue association.
		r.Post("/sprints/{id}/issues", sprintHandler.AddIssue)
		r.Delete("/sprints/{id}/issues/{issueId}", sprintHandler.RemoveIssue)

		// Issue creation and triage.
		r.Post("/issues", issueHandler.Create)
		r.Get("/issues/{id}", issueHandler.Get)
		r.Patch("/issues/{id}", issueHandler.Update)
		r.Put("/issues/{id}/assignee", issueHandler.Assign)
		r.Put("/issues/{id}/status", issueHandler.ChangeStatus)
	})

	return r
}
