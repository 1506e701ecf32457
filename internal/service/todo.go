// Package service wraps the five REST calls of the todo collection. Failures
// stop here: they become notifications and the caller only sees that the
// operation did not succeed.
package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notify"
)

const (
	todosPath   = "/todos/"
	destroyPath = "/destroy/"
)

// User-facing texts.
const (
	MsgCreated     = "Created new todo"
	MsgUpdated     = "Todo updated"
	MsgDeleted     = "Todo deleted successfully"
	MsgBulkDeleted = "Deleted selected todos."
	MsgNoneChosen  = "No todos selected."

	MsgServer     = "Server error. Please try again later."
	MsgNetwork    = "Network error. Please check your connection."
	MsgUnexpected = "An unexpected error occurred."
	MsgBadRequest = "An error occurred. Please try again."
)

// Doer sends one request; *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, method, path string, body, result any) (*resty.Response, error)
}

type TodoService struct {
	client   Doer
	notifier notify.Notifier
	logger   *log.Logger
}

func NewTodoService(client Doer, n notify.Notifier, logger *log.Logger) *TodoService {
	if n == nil {
		n = notify.Discard
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &TodoService{client: client, notifier: n, logger: logger}
}

type bulkDeleteRequest struct {
	TodoIDs []model.ID `json:"todo_ids"`
}

func todoPath(id model.ID) string {
	return todosPath + url.PathEscape(id.String()) + "/"
}

// Create posts a new todo and returns the server's copy of it.
func (s *TodoService) Create(ctx context.Context, fields model.Fields) (model.Todo, bool) {
	var todo model.Todo
	resp, err := s.client.Do(ctx, http.MethodPost, todosPath, fields, &todo)
	if err := api.Classify(resp, err, true); err != nil {
		s.fail("create", err)
		return model.Todo{}, false
	}
	if todo.ID == "" {
		s.fail("create", &api.UnexpectedResponseError{Status: resp.StatusCode(), Reason: "response has no id"})
		return model.Todo{}, false
	}
	s.logger.Debug("todo created", "id", todo.ID)
	notify.Success(s.notifier, MsgCreated)
	return todo, true
}

// List fetches the whole collection in server order.
func (s *TodoService) List(ctx context.Context) ([]model.Todo, bool) {
	var todos []model.Todo
	resp, err := s.client.Do(ctx, http.MethodGet, todosPath, nil, &todos)
	if err := api.Classify(resp, err, false); err != nil {
		s.fail("list", err)
		return nil, false
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	s.logger.Debug("todos listed", "count", len(todos))
	return todos, true
}

// Update patches one todo and returns the updated copy.
func (s *TodoService) Update(ctx context.Context, id model.ID, patch model.Patch) (model.Todo, bool) {
	var todo model.Todo
	resp, err := s.client.Do(ctx, http.MethodPatch, todoPath(id), patch, &todo)
	if err := api.Classify(resp, err, true); err != nil {
		s.fail("update", err, "id", id)
		return model.Todo{}, false
	}
	if todo.ID == "" {
		// some servers answer a PATCH without echoing the id
		todo.ID = id
	}
	s.logger.Debug("todo updated", "id", todo.ID)
	notify.Success(s.notifier, MsgUpdated)
	return todo, true
}

// RemoveOne deletes one todo. Only 204 No Content counts as success.
func (s *TodoService) RemoveOne(ctx context.Context, id model.ID) bool {
	resp, err := s.client.Do(ctx, http.MethodDelete, todoPath(id), nil, nil)
	cerr := api.Classify(resp, err, false)
	if cerr == nil && resp.StatusCode() != http.StatusNoContent {
		cerr = &api.UnexpectedResponseError{Status: resp.StatusCode(), Reason: "expected 204 No Content"}
	}
	if cerr != nil {
		s.fail("remove", cerr, "id", id)
		return false
	}
	s.logger.Debug("todo removed", "id", id)
	notify.Success(s.notifier, MsgDeleted)
	return true
}

// RemoveMany deletes every id in ids with a single request whose payload is
// exactly those ids.
func (s *TodoService) RemoveMany(ctx context.Context, ids model.IDSet) bool {
	if ids.Len() == 0 {
		notify.Error(s.notifier, MsgNoneChosen)
		return false
	}
	body := bulkDeleteRequest{TodoIDs: ids.Slice()}
	resp, err := s.client.Do(ctx, http.MethodDelete, destroyPath, body, nil)
	if err != nil || resp.StatusCode() >= http.StatusBadRequest {
		s.fail("remove many", api.Classify(resp, err, false), "count", ids.Len())
		return false
	}
	s.logger.Debug("todos removed", "count", ids.Len())
	notify.Success(s.notifier, MsgBulkDeleted)
	return true
}

func (s *TodoService) fail(op string, err error, kv ...any) {
	s.logger.Warn(op+" failed", append(kv, "err", err)...)
	for _, msg := range Describe(err) {
		notify.Error(s.notifier, msg)
	}
}

// Describe turns a classified error into the notifications shown to the user.
func Describe(err error) []string {
	var (
		se *api.ServerError
		ve *api.ValidationError
		ce *api.ClientError
		ne *api.NetworkError
	)
	switch {
	case err == nil:
		return nil
	case errors.As(err, &se):
		return []string{MsgServer}
	case errors.As(err, &ve):
		if msgs := ve.Messages(); len(msgs) > 0 {
			return msgs
		}
		return []string{MsgBadRequest}
	case errors.As(err, &ce):
		return []string{"Error: " + ce.Message}
	case errors.As(err, &ne):
		return []string{MsgNetwork}
	default:
		return []string{MsgUnexpected}
	}
}
