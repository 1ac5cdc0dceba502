package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Version is reported by GET /api.
const Version = "1.0.0"

// MountRoutes registers all API routes on the given chi router.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"version": Version})
		})

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Get("/tasks/pending", h.ListPendingTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Put("/tasks/{id}", h.UpdateTaskStatus)
		r.Delete("/tasks/{id}", h.DeleteTask)
	})
}
