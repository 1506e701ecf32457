package collection

import "github.com/Makepad-fr/tada/internal/model"

// ModalKind is the state of the create/edit form.
type ModalKind int

const (
	ModalClosed ModalKind = iota
	ModalCreating
	ModalEditing
)

func (k ModalKind) String() string {
	switch k {
	case ModalCreating:
		return "creating"
	case ModalEditing:
		return "editing"
	default:
		return "closed"
	}
}

// Modal is the form state. Todo is set only when Kind is ModalEditing.
// Session identifies one opening of the form; results carrying an older
// session belong to a form that is no longer shown.
type Modal struct {
	Kind    ModalKind
	Todo    model.Todo
	Session uint64
}

func (m Modal) Open() bool { return m.Kind != ModalClosed }

// Draft is the initial content of the edit buffer.
func (m Modal) Draft() model.Fields {
	if m.Kind == ModalEditing {
		return m.Todo.Fields()
	}
	return model.Fields{}
}

func (c *Controller) Modal() Modal { return c.modal }

// OpenNew opens an empty create form, replacing any open form.
func (c *Controller) OpenNew() Modal {
	c.session++
	c.submitting = false
	c.modal = Modal{Kind: ModalCreating, Session: c.session}
	return c.modal
}

// OpenEdit opens the form on the todo with the given id.
func (c *Controller) OpenEdit(id model.ID) (Modal, bool) {
	todo, ok := c.Get(id)
	if !ok {
		return c.modal, false
	}
	c.session++
	c.submitting = false
	c.modal = Modal{Kind: ModalEditing, Todo: todo, Session: c.session}
	return c.modal, true
}

// CloseModal closes the form. A submit still in flight settles later and is
// ignored for form purposes.
func (c *Controller) CloseModal() {
	c.modal = Modal{}
	c.submitting = false
}

// CloseSession closes the form only if session is still the open one.
func (c *Controller) CloseSession(session uint64) bool {
	if !c.IsCurrent(session) {
		return false
	}
	c.CloseModal()
	return true
}

// IsCurrent reports whether session is the form currently shown.
func (c *Controller) IsCurrent(session uint64) bool {
	return c.modal.Open() && c.modal.Session == session
}

// BeginSubmit marks a submit of the open form as in flight. It refuses a
// second submit for the same session until EndSubmit.
func (c *Controller) BeginSubmit(session uint64) bool {
	if !c.IsCurrent(session) || c.submitting {
		return false
	}
	c.submitting = true
	return true
}

// EndSubmit clears the in-flight mark for session, whatever the outcome.
func (c *Controller) EndSubmit(session uint64) {
	if c.modal.Session == session {
		c.submitting = false
	}
}

func (c *Controller) Submitting() bool { return c.submitting }
