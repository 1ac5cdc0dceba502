package http

import (
	"net/http"

	"github.com/Strob0t/TaskScheduler/internal/domain/task"
	"github.com/Strob0t/TaskScheduler/internal/service"
)

// Handlers holds the services the HTTP handlers call.
type Handlers struct {
	Tasks *service.TaskService
}

// ListTasks handles GET /api/tasks
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// ListPendingTasks handles GET /api/tasks/pending
func (h *Handlers) ListPendingTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Tasks.ListPending(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// GetTask handles GET /api/tasks/{id}
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tasks.Get(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTask handles POST /api/tasks
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[task.CreateRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tasks.Create(r.Context(), &req)
	if err != nil {
		writeDomainError(w, r, err, "task not found")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTaskStatus handles PUT /api/tasks/{id}
func (h *Handlers) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[task.UpdateStatusRequest](w, r)
	if !ok {
		return
	}

	t, err := h.Tasks.UpdateStatus(r.Context(), urlParam(r, "id"), req)
	if err != nil {
		writeDomainError(w, r, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/tasks/{id}
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.Tasks.Delete(r.Context(), urlParam(r, "id")); err != nil {
		writeInternalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
