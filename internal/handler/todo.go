package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kellyw/taskdeck/internal/apperror"
	"github.com/kellyw/taskdeck/internal/auth"
	"github.com/kellyw/taskdeck/internal/model"
	"github.com/kellyw/taskdeck/internal/service"
)

// TodoHandler serves the todo endpoints. All routes sit behind RequireAuth;
// the handler scopes every operation to the session user and refuses access
// to other users' todos.
type TodoHandler struct {
	todos  *service.TodoService
	logger *slog.Logger
}

func NewTodoHandler(todos *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{todos: todos, logger: logger}
}

type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// HandleCreate adds a todo owned by the session user.
//
// POST /api/todos
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid todo JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	todo, err := h.todos.Create(r.Context(), service.CreateTodoInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, todo)
}

// HandleList returns the session user's todos.
//
// GET /api/todos
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "valid authentication required"})
		return
	}

	todos, err := h.todos.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// HandleGet returns one todo, owner only.
//
// GET /api/todos/{id}
func (h *TodoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	todo, err := h.ownedTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, todo)
}

// HandleUpdate applies a partial update, owner only.
//
// PUT /api/todos/{id}
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	todo, err := h.ownedTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	updated, err := h.todos.Update(r.Context(), todo.ID, fields)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// HandleDelete removes a todo, owner only.
//
// DELETE /api/todos/{id}
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	todo, err := h.ownedTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.todos.Delete(r.Context(), todo.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleComplete marks a todo done, owner only.
//
// POST /api/todos/{id}/complete
func (h *TodoHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	todo, err := h.ownedTodo(r)
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.todos.SetCompleted(r.Context(), todo.ID, true)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ownedTodo loads the {id} todo and checks it belongs to the session user.
// A todo owned by someone else yields ErrForbidden, an absent id ErrNotFound.
func (h *TodoHandler) ownedTodo(r *http.Request) (*model.Todo, error) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, apperror.Forbidden("authentication required")
	}

	todo, err := h.todos.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return nil, err
	}
	if todo.UserID != userID {
		return nil, apperror.Forbidden("todo belongs to another user")
	}
	return todo, nil
}
