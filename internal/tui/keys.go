package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap lists the bindings of the formula screen.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Edit         key.Binding
	Cancel       key.Binding
	PickOxide    key.Binding
	AddRow       key.Binding
	AddR2ORO     key.Binding
	AddR2O3      key.Binding
	AddRO2       key.Binding
	DeleteRow    key.Binding
	MinMaterials key.Binding
	NextSolution key.Binding
	PrevSolution key.Binding
	Materials    key.Binding
	Solve        key.Binding
	Quit         key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Edit:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		Cancel:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
		PickOxide:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "oxide")),
		AddRow:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		AddR2ORO:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "add R₂O/RO")),
		AddR2O3:      key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "add R₂O₃")),
		AddRO2:       key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "add RO₂")),
		DeleteRow:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		MinMaterials: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "min materials")),
		NextSolution: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next solution")),
		PrevSolution: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev solution")),
		Materials:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "materials")),
		Solve:        key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "solve")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Edit, k.PickOxide, k.AddRow, k.DeleteRow, k.MinMaterials, k.Solve, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Edit, k.Cancel, k.PickOxide},
		{k.AddRow, k.AddR2ORO, k.AddR2O3, k.AddRO2, k.DeleteRow},
		{k.MinMaterials, k.NextSolution, k.PrevSolution, k.Materials, k.Solve, k.Quit},
	}
}
