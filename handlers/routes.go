package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/abefas/todoapp/middleware"
)

// NewRouter wires the task routes and the middleware chain.
func NewRouter(h *Handlers, logger log.FieldLogger) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Tracing(),
		middleware.Recover(logger),
	)

	router.HandleFunc("/tasks", h.GetTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks", h.CreateTask).Methods(http.MethodPost)
	router.HandleFunc("/tasks/completed", h.GetCompletedTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks/uncompleted", h.GetUncompletedTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id:[0-9]+}", h.GetTask).Methods(http.MethodGet)
	router.HandleFunc("/tasks/{id:[0-9]+}", h.UpdateTask).Methods(http.MethodPut)
	router.HandleFunc("/tasks/{id:[0-9]+}", h.DeleteTask).Methods(http.MethodDelete)
	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	// mux skips router.Use middleware for unmatched requests.
	unmatched := func(h http.Handler) http.Handler {
		return middleware.RequestID(middleware.Logging(logger)(middleware.Tracing()(h)))
	}
	router.NotFoundHandler = unmatched(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	}))
	router.MethodNotAllowedHandler = unmatched(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	}))

	return router
}
