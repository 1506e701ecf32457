package collection

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/tada/internal/model"
)

func todo(id, title string) model.Todo {
	return model.Todo{
		ID:          model.ID(id),
		Title:       title,
		Description: title + " description",
		Deadline:    time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC),
	}
}

func ids(c *Controller) []model.ID {
	var out []model.ID
	for _, t := range c.Todos() {
		out = append(out, t.ID)
	}
	return out
}

type stubLister struct {
	calls int
	todos []model.Todo
	ok    bool
}

func (s *stubLister) List(context.Context) ([]model.Todo, bool) {
	s.calls++
	return s.todos, s.ok
}

func TestUpsert_InsertOrReplaceInPlace(t *testing.T) {
	c := New()
	c.Upsert(todo("1", "a"))
	c.Upsert(todo("2", "b"))
	c.Upsert(todo("3", "c"))

	c.Upsert(todo("2", "b2"))
	assert.Equal(t, []model.ID{"1", "2", "3"}, ids(c))
	got, ok := c.Get("2")
	require.True(t, ok)
	assert.Equal(t, "b2", got.Title)

	c.Upsert(model.Todo{Title: "no id"})
	assert.Equal(t, 3, c.Len(), "a todo without id is ignored")
}

func TestUpsert_AtMostOneEntryPerID(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	c := New()
	for i := 0; i < 500; i++ {
		id := fmt.Sprint(r.Intn(20))
		c.Upsert(todo(id, fmt.Sprint("v", i)))

		seen := map[model.ID]bool{}
		for _, t2 := range c.Todos() {
			require.False(t, seen[t2.ID], "duplicate id %s after %d upserts", t2.ID, i+1)
			seen[t2.ID] = true
		}
	}
}

func TestApplyUpdate_SkipsRemovedTodo(t *testing.T) {
	c := New()
	c.Upsert(todo("5", "five"))

	assert.True(t, c.ApplyUpdate(todo("5", "five v2")))
	require.True(t, c.RemoveByID("5"))
	assert.False(t, c.ApplyUpdate(todo("5", "five v3")))
	assert.Equal(t, 0, c.Len())
}

func TestToggleSelect_TwiceRestores(t *testing.T) {
	c := New()
	c.CompleteLoad([]model.Todo{todo("1", "a"), todo("2", "b"), todo("3", "c")})
	c.ToggleSelect("2")

	for _, id := range []model.ID{"1", "2", "3", "missing"} {
		before := c.Selected()
		c.ToggleSelect(id)
		c.ToggleSelect(id)
		after := c.Selected()
		assert.Equal(t, before.Slice(), after.Slice(), "toggling %s twice", id)
	}
}

func TestToggleSelect_DoesNotTouchWorkingSet(t *testing.T) {
	c := New()
	c.CompleteLoad([]model.Todo{todo("1", "a"), todo("2", "b")})
	before := c.Todos()

	assert.True(t, c.ToggleSelect("1"))
	assert.True(t, c.IsSelected("1"))
	assert.False(t, c.ToggleSelect("unknown"))
	assert.False(t, c.IsSelected("unknown"))
	assert.Equal(t, before, c.Todos())
}

func TestRemoveByID_PrunesSelection(t *testing.T) {
	c := New()
	c.CompleteLoad([]model.Todo{todo("1", "a"), todo("2", "b"), todo("3", "c")})
	c.ToggleSelect("1")
	c.ToggleSelect("2")

	assert.True(t, c.RemoveByID("2"))
	assert.Equal(t, []model.ID{"1", "3"}, ids(c))
	sel := c.Selected()
	assert.Equal(t, []model.ID{"1"}, sel.Slice())

	assert.False(t, c.RemoveByID("2"), "removing twice is a no-op")
	assert.Equal(t, []model.ID{"1", "3"}, ids(c))
}

func TestBulkRemove_AlwaysClearsSelection(t *testing.T) {
	tests := []struct {
		name        string
		remove      []model.ID
		wantRemoved int
		wantLeft    []model.ID
	}{
		{name: "matching", remove: []model.ID{"1", "3"}, wantRemoved: 2, wantLeft: []model.ID{"2", "4"}},
		{name: "partly matching", remove: []model.ID{"4", "99"}, wantRemoved: 1, wantLeft: []model.ID{"1", "2", "3"}},
		{name: "nothing matching", remove: []model.ID{"98", "99"}, wantRemoved: 0, wantLeft: []model.ID{"1", "2", "3", "4"}},
		{name: "empty set", remove: nil, wantRemoved: 0, wantLeft: []model.ID{"1", "2", "3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.CompleteLoad([]model.Todo{todo("1", "a"), todo("2", "b"), todo("3", "c"), todo("4", "d")})
			c.ToggleSelect("2")
			c.ToggleSelect("3")

			n := c.BulkRemove(model.NewIDSet(tt.remove...))
			assert.Equal(t, tt.wantRemoved, n)
			assert.Equal(t, tt.wantLeft, ids(c))
			sel := c.Selected()
			assert.Equal(t, 0, sel.Len())
		})
	}
}

func TestLoad_RunsOnce(t *testing.T) {
	src := &stubLister{todos: []model.Todo{todo("1", "a"), todo("1", "dup"), todo("2", "b")}, ok: true}
	c := New()

	assert.True(t, c.Load(context.Background(), src))
	assert.False(t, c.Load(context.Background(), src))
	assert.Equal(t, 1, src.calls)
	assert.True(t, c.Loaded())
	assert.Equal(t, []model.ID{"1", "2"}, ids(c), "duplicate ids from the server keep the first entry")
}

func TestCompleteLoad_KeepsTodosUpsertedMeanwhile(t *testing.T) {
	c := New()
	require.True(t, c.StartLoad())
	c.Upsert(todo("new", "created early"))
	c.Upsert(todo("2", "stale copy"))

	c.CompleteLoad([]model.Todo{todo("1", "a"), todo("2", "b")})
	assert.Equal(t, []model.ID{"1", "2", "new"}, ids(c))
	got, ok := c.Get("2")
	require.True(t, ok)
	assert.Equal(t, "b", got.Title, "the listing wins for ids it contains")
	assert.True(t, c.Loaded())
}

func TestLoad_FailureKeepsPriorValue(t *testing.T) {
	c := New()
	assert.False(t, c.Load(context.Background(), &stubLister{ok: false}))
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Loaded())
	assert.False(t, c.StartLoad(), "the load does not run again after a failure")
}

func TestStats(t *testing.T) {
	c := New()
	done := todo("1", "a")
	done.IsCompleted = true
	c.CompleteLoad([]model.Todo{done, todo("2", "b"), todo("3", "c")})

	d, p := c.Stats()
	assert.Equal(t, 1, d)
	assert.Equal(t, 2, p)

	got, ok := c.At(1)
	require.True(t, ok)
	assert.Equal(t, model.ID("2"), got.ID)
	_, ok = c.At(3)
	assert.False(t, ok)
}
