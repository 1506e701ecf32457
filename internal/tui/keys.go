package tui

import "github.com/charmbracelet/bubbles/key"

type listKeys struct {
	Select       key.Binding
	New          key.Binding
	Edit         key.Binding
	Complete     key.Binding
	Delete       key.Binding
	DeleteMarked key.Binding
	Expand       key.Binding
	Quit         key.Binding
}

func newListKeys() listKeys {
	return listKeys{
		Select:       key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		New:          key.NewBinding(key.WithKeys("n", "a"), key.WithHelp("n", "new")),
		Edit:         key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Complete:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "done")),
		Delete:       key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		DeleteMarked: key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "delete selected")),
		Expand:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "expand")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k listKeys) short() []key.Binding {
	return []key.Binding{k.Select, k.New, k.Edit, k.Complete, k.Delete}
}

func (k listKeys) full() []key.Binding {
	return []key.Binding{k.Select, k.New, k.Edit, k.Complete, k.Delete, k.DeleteMarked, k.Expand}
}

type formKeys struct {
	Next   key.Binding
	Prev   key.Binding
	Submit    key.Binding
	Cancel    key.Binding
	ForceQuit key.Binding
}

func newFormKeys() formKeys {
	return formKeys{
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Submit:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
