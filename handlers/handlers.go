package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/abefas/todoapp/middleware"
	"github.com/abefas/todoapp/models"
)

// maxBodySize caps request bodies at 1 MiB.
const maxBodySize = 1 << 20

const (
	msgCreated        = "Task for to do list created successfully"
	msgUpdated        = "Task updated successfully"
	msgDeleted        = "Task deleted successfully"
	msgNotFound       = "Task not found. Enter correct id"
	msgInvalidPayload = "invalid request payload"
	msgInternal       = "internal server error"
)

// TaskStore is the persistence the handlers need.
type TaskStore interface {
	Create(ctx context.Context, t models.Task) (int, error)
	GetByID(ctx context.Context, id int) (models.Task, error)
	List(ctx context.Context) ([]models.Task, error)
	ListByCompleted(ctx context.Context, completed bool) ([]models.Task, error)
	Update(ctx context.Context, id int, p models.TaskPatch) error
	Delete(ctx context.Context, id int) error
}

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the task store, allowing methods to share it.
type Handlers struct {
	Store  TaskStore
	Pinger Pinger
	Log    log.FieldLogger
}

// NewHandlers is a constructor for the Handlers struct. pinger may be nil.
func NewHandlers(store TaskStore, pinger Pinger, logger log.FieldLogger) *Handlers {
	return &Handlers{Store: store, Pinger: pinger, Log: logger}
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int    `json:"id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondWithJSON formats and sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"error":"` + msgInternal + `"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps the error taxonomy onto status codes. Anything that is
// neither a validation error nor a missing row is logged and hidden.
func (h *Handlers) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Message})
	case errors.Is(err, models.ErrNotFound):
		respondWithJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
	default:
		h.Log.WithFields(log.Fields{
			"request_id": middleware.RequestIDFromContext(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

// decodeJSON reads a size-limited JSON body into v. The body must hold a
// single JSON value; trailing data is rejected.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return err
	}
	return sonic.ConfigStd.Unmarshal(body, v)
}

// taskID reads the {id} path variable. Ids that do not fit an int are
// reported as not found, since no row can carry them.
func taskID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, models.ErrNotFound
	}
	return id, nil
}

// CreateTask creates a new task in the database.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidPayload})
		return
	}

	t, err := req.Task()
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	id, err := h.Store.Create(r.Context(), t)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, messageResponse{Message: msgCreated, ID: id})
}

// GetTasks retrieves all tasks ordered by id.
func (h *Handlers) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Store.List(r.Context())
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

// GetTask retrieves a single task by its ID.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	t, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, t)
}

// UpdateTask applies a partial update. The task must exist before the body
// is validated, and nothing is written unless every field is valid.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	if _, err := h.Store.GetByID(r.Context(), id); err != nil {
		h.respondWithError(w, r, err)
		return
	}

	var req models.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidPayload})
		return
	}

	patch, err := req.Patch()
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	if err := h.Store.Update(r.Context(), id, patch); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: msgUpdated})
}

// DeleteTask deletes a task by its ID.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := taskID(r)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}

	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{Message: msgDeleted})
}

// GetCompletedTasks lists the tasks marked completed.
func (h *Handlers) GetCompletedTasks(w http.ResponseWriter, r *http.Request) {
	h.listByCompleted(w, r, true)
}

// GetUncompletedTasks lists the tasks not yet completed.
func (h *Handlers) GetUncompletedTasks(w http.ResponseWriter, r *http.Request) {
	h.listByCompleted(w, r, false)
}

func (h *Handlers) listByCompleted(w http.ResponseWriter, r *http.Request, completed bool) {
	tasks, err := h.Store.ListByCompleted(r.Context(), completed)
	if err != nil {
		h.respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, tasks)
}

// Health pings the database.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.Pinger != nil {
		if err := h.Pinger.Ping(r.Context()); err != nil {
			h.Log.WithError(err).Warn("health check failed")
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
