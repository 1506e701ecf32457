package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ID is the server-assigned identifier of a todo. The client treats it as
// opaque text; integer ids are written back to the server as JSON numbers.
type ID string

var intLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)

func (id ID) String() string { return string(id) }

func (id ID) MarshalJSON() ([]byte, error) {
	if intLiteral.MatchString(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Todo mirrors one record of the remote collection.
type Todo struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// Fields returns the user-editable part of the todo.
func (t Todo) Fields() Fields {
	return Fields{Title: t.Title, Description: t.Description, Deadline: t.Deadline}
}

// Fields is the creation payload.
type Fields struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
}

// MissingFieldsError lists required fields left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ErrMissingFields matches any *MissingFieldsError via errors.Is.
var ErrMissingFields = errors.New("missing required fields")

func (e *MissingFieldsError) Is(target error) bool { return target == ErrMissingFields }

// Validate reports every required field that is empty.
func (f Fields) Validate() error {
	var missing []string
	if strings.TrimSpace(f.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	if f.Deadline.IsZero() {
		missing = append(missing, "deadline")
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// Patch is a partial update; nil fields are left untouched by the server.
type Patch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsCompleted *bool      `json:"is_completed,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Deadline == nil && p.IsCompleted == nil
}

// FieldsPatch builds a patch carrying all three editable fields.
func FieldsPatch(f Fields) Patch {
	title, desc, deadline := f.Title, f.Description, f.Deadline
	return Patch{Title: &title, Description: &desc, Deadline: &deadline}
}

// CompletionPatch sets only the completion flag.
func CompletionPatch(done bool) Patch {
	return Patch{IsCompleted: &done}
}
