package collection_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/api"
	"github.com/Makepad-fr/tada/internal/collection"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/notify"
	"github.com/Makepad-fr/tada/internal/service"
)

func serve(t *testing.T, status int, body string) (*service.TodoService, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	rec := &notify.Recorder{}
	return service.NewTodoService(api.New(api.Config{BaseURL: srv.URL}), rec, nil), rec
}

func seeded() *collection.Controller {
	c := collection.New()
	c.CompleteLoad([]model.Todo{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}})
	return c
}

var fields = model.Fields{Title: "t", Description: "d", Deadline: time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC)}

func TestCreateValidationFailureLeavesWorkingSet(t *testing.T) {
	svc, rec := serve(t, http.StatusBadRequest, `{"title": ["This field is required."]}`)
	c := seeded()
	before := c.Todos()

	if todo, ok := svc.Create(context.Background(), fields); ok {
		c.Upsert(todo)
	}

	assert.Equal(t, before, c.Todos())
	assert.Equal(t, []string{"This field is required."}, rec.Texts())
}

func TestCreateAppendsServerAssignedID(t *testing.T) {
	svc, _ := serve(t, http.StatusCreated, `{"id": 77, "title": "t", "description": "d",
		"deadline": "2026-11-01T09:00:00Z", "is_completed": false, "created_at": "2026-10-14T10:00:00Z"}`)
	c := seeded()

	todo, ok := svc.Create(context.Background(), fields)
	require.True(t, ok)
	c.Upsert(todo)

	require.Equal(t, 3, c.Len())
	last, _ := c.At(2)
	assert.Equal(t, model.ID("77"), last.ID)
}

func TestRemoveOneFailureLeavesWorkingSet(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusNotFound, http.StatusInternalServerError} {
		svc, _ := serve(t, status, `{}`)
		c := seeded()
		before := c.Todos()

		ok := svc.RemoveOne(context.Background(), "1")
		if ok {
			c.RemoveByID("1")
		}
		assert.False(t, ok, "status %d", status)
		assert.Equal(t, before, c.Todos(), "status %d", status)
	}
}

func TestListNetworkFailureOnFirstLoad(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	rec := &notify.Recorder{}
	svc := service.NewTodoService(api.New(api.Config{BaseURL: base}), rec, nil)
	c := collection.New()

	assert.False(t, c.Load(context.Background(), svc))
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, []string{service.MsgNetwork}, rec.Texts())
}

func TestBulkRemoveAfterConfirmedDelete(t *testing.T) {
	svc, _ := serve(t, http.StatusOK, `{}`)
	c := seeded()
	c.ToggleSelect("1")
	c.ToggleSelect("2")

	sel := c.Selected()
	require.True(t, svc.RemoveMany(context.Background(), sel))
	c.BulkRemove(sel)

	assert.Equal(t, 0, c.Len())
	after := c.Selected()
	assert.Equal(t, 0, after.Len())
}
