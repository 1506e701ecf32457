// Package collection holds the client's mirror of the remote todo collection:
// the working set, the selection set and the state of the edit form.
//
// A Controller is owned by one goroutine (the UI loop). Results of network
// calls are applied to it only after they settle, never optimistically.
package collection

import (
	"context"

	"github.com/Makepad-fr/tada/internal/model"
)

// Lister fetches the collection; *service.TodoService implements it.
type Lister interface {
	List(ctx context.Context) ([]model.Todo, bool)
}

type Controller struct {
	todos    []model.Todo
	selected model.IDSet

	loadStarted bool
	loaded      bool

	modal      Modal
	session    uint64
	submitting bool
}

func New() *Controller {
	return &Controller{}
}

// Todos returns a copy of the working set in display order.
func (c *Controller) Todos() []model.Todo {
	out := make([]model.Todo, len(c.todos))
	copy(out, c.todos)
	return out
}

func (c *Controller) Len() int { return len(c.todos) }

// Index returns the position of id in the working set, or -1.
func (c *Controller) Index(id model.ID) int {
	for i, t := range c.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) Get(id model.ID) (model.Todo, bool) {
	if i := c.Index(id); i >= 0 {
		return c.todos[i], true
	}
	return model.Todo{}, false
}

// At returns the todo at a 0-based position.
func (c *Controller) At(i int) (model.Todo, bool) {
	if i < 0 || i >= len(c.todos) {
		return model.Todo{}, false
	}
	return c.todos[i], true
}

// Stats counts completed and pending todos.
func (c *Controller) Stats() (done, pending int) {
	for _, t := range c.todos {
		if t.IsCompleted {
			done++
		} else {
			pending++
		}
	}
	return
}

// StartLoad reports true the first time it is called and false afterwards.
func (c *Controller) StartLoad() bool {
	if c.loadStarted {
		return false
	}
	c.loadStarted = true
	return true
}

// CompleteLoad replaces the working set with a successful listing.
// Duplicate ids keep their first occurrence. Todos upserted while the listing
// was in flight and missing from it are kept after the listed ones.
func (c *Controller) CompleteLoad(todos []model.Todo) {
	early := c.todos
	c.todos = make([]model.Todo, 0, len(todos)+len(early))
	seen := make(map[model.ID]bool, len(todos)+len(early))
	for _, batch := range [][]model.Todo{todos, early} {
		for _, t := range batch {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			c.todos = append(c.todos, t)
		}
	}
	c.pruneSelection()
	c.loaded = true
}

// Loaded reports whether a listing has been applied.
func (c *Controller) Loaded() bool { return c.loaded }

// Load runs the initial listing synchronously. It does nothing after the
// first call. On failure the working set keeps its prior value.
func (c *Controller) Load(ctx context.Context, src Lister) bool {
	if !c.StartLoad() {
		return false
	}
	todos, ok := src.List(ctx)
	if !ok {
		return false
	}
	c.CompleteLoad(todos)
	return true
}

// Upsert replaces the todo with the same id in place, or appends it.
func (c *Controller) Upsert(todo model.Todo) {
	if todo.ID == "" {
		return
	}
	if i := c.Index(todo.ID); i >= 0 {
		c.todos[i] = todo
		return
	}
	c.todos = append(c.todos, todo)
}

// ApplyUpdate is Upsert for an update result: it replaces the todo only while
// its id is still in the working set, so a row deleted while the update was in
// flight is not brought back.
func (c *Controller) ApplyUpdate(todo model.Todo) bool {
	i := c.Index(todo.ID)
	if i < 0 {
		return false
	}
	c.todos[i] = todo
	return true
}

// RemoveByID drops the todo and its selection mark.
func (c *Controller) RemoveByID(id model.ID) bool {
	i := c.Index(id)
	c.selected.Remove(id)
	if i < 0 {
		return false
	}
	c.todos = append(c.todos[:i], c.todos[i+1:]...)
	return true
}

// BulkRemove drops every todo whose id is in ids and clears the selection.
func (c *Controller) BulkRemove(ids model.IDSet) int {
	kept := c.todos[:0]
	removed := 0
	for _, t := range c.todos {
		if ids.Has(t.ID) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	c.todos = kept
	c.selected.Clear()
	return removed
}

// ToggleSelect flips the selection mark of id. Ids not in the working set are
// ignored. It returns whether id is selected afterwards.
func (c *Controller) ToggleSelect(id model.ID) bool {
	if c.Index(id) < 0 {
		return false
	}
	return c.selected.Toggle(id)
}

func (c *Controller) IsSelected(id model.ID) bool { return c.selected.Has(id) }

// Selected returns a copy of the selection set.
func (c *Controller) Selected() model.IDSet { return c.selected.Clone() }

func (c *Controller) pruneSelection() {
	for _, id := range c.selected.Slice() {
		if c.Index(id) < 0 {
			c.selected.Remove(id)
		}
	}
}
