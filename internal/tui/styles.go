package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/glaze/internal/solution"
)

// Palette
var (
	Foreground = lipgloss.AdaptiveColor{Light: "#101F38", Dark: "#f2f2f2"}
	Accent     = lipgloss.AdaptiveColor{Light: "#6d4c41", Dark: "#d7a86e"} // glaze amber
	Muted      = lipgloss.AdaptiveColor{Light: "#8a94a3", Dark: "#5b6b82"}
	Border     = lipgloss.AdaptiveColor{Light: "#dce0e5", Dark: "#2a3850"}

	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Destructive = lipgloss.Color("#e53935")
	Info        = lipgloss.Color("#2196F3")
)

// Styles holds every style the view uses.
type Styles struct {
	Title     lipgloss.Style
	Group     lipgloss.Style
	Row       lipgloss.Style
	Cursor    lipgloss.Style
	Oxide     lipgloss.Style
	Empty     lipgloss.Style
	Divider   lipgloss.Style
	Panel     lipgloss.Style
	Status    lipgloss.Style
	Notice    lipgloss.Style
	Help      lipgloss.Style
	Selected  lipgloss.Style
	Excluded  lipgloss.Style
	Material  lipgloss.Style
	Picker    lipgloss.Style
	ErrorText lipgloss.Style

	Level map[solution.Level]lipgloss.Style
	Diff  map[solution.Kind]lipgloss.Style
}

// DefaultStyles returns the adaptive light/dark styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(Accent),
		Group:     lipgloss.NewStyle().Bold(true).Foreground(Foreground).MarginTop(1),
		Row:       lipgloss.NewStyle().Foreground(Foreground),
		Cursor:    lipgloss.NewStyle().Foreground(Accent).Bold(true),
		Oxide:     lipgloss.NewStyle().Foreground(Foreground),
		Empty:     lipgloss.NewStyle().Foreground(Muted).Italic(true),
		Divider:   lipgloss.NewStyle().Foreground(Border),
		Panel:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1),
		Status:    lipgloss.NewStyle().Foreground(Muted),
		Notice:    lipgloss.NewStyle().Foreground(Warning).Bold(true),
		Help:      lipgloss.NewStyle().Foreground(Muted).Italic(true),
		Selected:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Accent).Padding(0, 1),
		Excluded:  lipgloss.NewStyle().Foreground(Muted).Strikethrough(true),
		Material:  lipgloss.NewStyle().Foreground(Foreground),
		Picker:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(Accent).Padding(0, 1),
		ErrorText: lipgloss.NewStyle().Foreground(Destructive),
		Level: map[solution.Level]lipgloss.Style{
			solution.LevelLow:    lipgloss.NewStyle().Foreground(Success),
			solution.LevelMedium: lipgloss.NewStyle().Foreground(Warning),
			solution.LevelHigh:   lipgloss.NewStyle().Foreground(Destructive),
		},
		Diff: map[solution.Kind]lipgloss.Style{
			solution.KindLow:     lipgloss.NewStyle().Foreground(Success),
			solution.KindMedium:  lipgloss.NewStyle().Foreground(Warning),
			solution.KindHigh:    lipgloss.NewStyle().Foreground(Destructive),
			solution.KindExtra:   lipgloss.NewStyle().Foreground(Info),
			solution.KindMissing: lipgloss.NewStyle().Foreground(Muted).Italic(true),
		},
	}
}

// PlainStyles renders without colour or borders, for command output and
// dumb terminals.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Group: plain, Row: plain, Cursor: plain,
		Oxide: plain, Empty: plain, Divider: plain,
		Panel: plain, Status: plain, Notice: plain, Help: plain, Selected: plain,
		Excluded: plain, Material: plain, Picker: plain, ErrorText: plain,
		Level: map[solution.Level]lipgloss.Style{},
		Diff:  map[solution.Kind]lipgloss.Style{},
	}
}

func (s Styles) level(l solution.Level) lipgloss.Style {
	if st, ok := s.Level[l]; ok {
		return st
	}
	return lipgloss.NewStyle()
}

func (s Styles) diff(k solution.Kind) lipgloss.Style {
	if st, ok := s.Diff[k]; ok {
		return st
	}
	return lipgloss.NewStyle()
}
