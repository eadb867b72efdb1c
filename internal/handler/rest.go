package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/dmoralestech/todo-service/internal/faults"
	"github.com/dmoralestech/todo-service/internal/model"
	"github.com/dmoralestech/todo-service/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// RESTHandler handles REST API requests for TODO items.
type RESTHandler struct {
	store     store.Store
	logger    *zap.Logger
	publisher Publisher
}

// NewRESTHandler creates a new RESTHandler instance.
// publisher may be nil, in which case no change events are emitted.
func NewRESTHandler(s store.Store, logger *zap.Logger, publisher Publisher) *RESTHandler {
	return &RESTHandler{
		store:     s,
		logger:    logger,
		publisher: publisher,
	}
}

// RegisterRoutes registers the REST API routes with the router.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/todos", h.ListTodos).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/todos", h.CreateTodo).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/todos/stats", h.GetStats).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/todos/{id}", h.GetTodo).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/todos/{id}", h.UpdateTodo).Methods(http.MethodPatch)
	router.HandleFunc("/api/v1/todos/{id}/toggle", h.ToggleTodo).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/todos/{id}", h.DeleteTodo).Methods(http.MethodDelete)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	response := HealthResponse{
		Status:  "healthy",
		Version: Version,
	}
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(response))
}

// ListTodos handles GET /api/v1/todos requests. The optional filter query
// parameter selects the all, active, or completed view.
func (h *RESTHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := model.ParseFilter(r.URL.Query().Get("filter"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todos, err := h.store.ListFiltered(ctx, filter)
	if err != nil {
		h.handleStoreError(w, err, "list todos")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(todos))
}

// GetStats handles GET /api/v1/todos/stats requests.
func (h *RESTHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.store.Stats(ctx)
	if err != nil {
		h.handleStoreError(w, err, "get stats")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(stats))
}

// GetTodo handles GET /api/v1/todos/{id} requests.
func (h *RESTHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	todo, err := h.store.Get(ctx, id)
	if err != nil {
		h.handleStoreError(w, err, "get todo")
		return
	}

	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(todo))
}

// CreateTodo handles POST /api/v1/todos requests.
func (h *RESTHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.store.Create(ctx, input.Text)
	if err != nil {
		h.handleStoreError(w, err, "create todo")
		return
	}

	h.publish(model.NewTodoEvent(model.EventTodoCreated, *todo))
	h.writeJSON(w, http.StatusCreated, model.NewSuccessResponse(todo))
}

// UpdateTodo handles PATCH /api/v1/todos/{id} requests with a partial
// payload; absent fields are left untouched.
func (h *RESTHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	var input model.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := input.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	todo, err := h.store.Update(ctx, id, input)
	if err != nil {
		h.handleStoreError(w, err, "update todo")
		return
	}

	h.publish(model.NewTodoEvent(model.EventTodoUpdated, *todo))
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(todo))
}

// ToggleTodo handles POST /api/v1/todos/{id}/toggle requests.
func (h *RESTHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	todo, err := h.store.Toggle(ctx, id)
	if err != nil {
		h.handleStoreError(w, err, "toggle todo")
		return
	}

	h.publish(model.NewTodoEvent(model.EventTodoUpdated, *todo))
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(todo))
}

// DeleteTodo handles DELETE /api/v1/todos/{id} requests and confirms by
// echoing the removed ID.
func (h *RESTHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	deletedID, err := h.store.Delete(ctx, id)
	if err != nil {
		h.handleStoreError(w, err, "delete todo")
		return
	}

	h.publish(model.NewDeleteEvent(deletedID))
	h.writeJSON(w, http.StatusOK, model.NewSuccessResponse(model.DeleteResponse{ID: deletedID}))
}

// publish emits a change event if a publisher is configured.
func (h *RESTHandler) publish(event model.Event) {
	if h.publisher != nil {
		h.publisher.Publish(event)
	}
}

// handleStoreError handles store errors and writes appropriate HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "todo not found")
	case errors.Is(err, store.ErrInvalidID):
		h.writeError(w, http.StatusBadRequest, "invalid todo ID")
	case errors.Is(err, store.ErrEmptyText):
		h.writeError(w, http.StatusBadRequest, "todo text cannot be empty")
	case errors.Is(err, store.ErrEmptyUpdate):
		h.writeError(w, http.StatusBadRequest, "update must supply at least one field")
	case errors.Is(err, model.ErrInvalidFilter):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, faults.ErrTransient):
		h.logger.Warn("transient failure injected", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeJSON writes a JSON response with the given status code.
func (h *RESTHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError writes an error response with the given status code and message.
func (h *RESTHandler) writeError(w http.ResponseWriter, status int, message string) {
	response := model.ErrorResponse{
		Code:    status,
		Message: message,
	}
	h.writeJSON(w, status, response)
}
