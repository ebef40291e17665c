package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/glaze/internal/engine"
	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/umf"
)

// SnapshotMsg carries engine state into the program.
type SnapshotMsg struct {
	Snapshot engine.Snapshot
}

// Sender submits a command to the engine without blocking.
type Sender func(engine.Command) bool

type pickerMode int

const (
	pickNone pickerMode = iota
	pickOxide
	pickMaterial
)

// Model is the formula screen. It never mutates formula state itself: every
// edit becomes an engine command and the next SnapshotMsg shows the result.
type Model struct {
	send    Sender
	printer *status.Printer
	styles  Styles
	keys    KeyMap
	help    help.Model
	input   textinput.Model
	spinner spinner.Model

	snap  engine.Snapshot
	ready bool

	cursor   int // index into DisplayOrder(snap.Rows)
	selected int // solution index
	editing  bool
	editRow  int

	picker    pickerMode
	pickItems []string
	pickIndex int

	focusEpoch int
	quitting   bool
}

// New creates the screen model.
func New(send Sender, printer *status.Printer, styles Styles) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 16
	return Model{
		send:    send,
		printer: printer,
		styles:  styles,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		input:   ti,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		return m.applySnapshot(msg.Snapshot)
	case spinner.TickMsg:
		if !m.snap.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) applySnapshot(s engine.Snapshot) (tea.Model, tea.Cmd) {
	wasBusy := m.snap.Busy
	m.snap = s
	m.ready = true

	rows := DisplayOrder(s.Rows)
	if s.HasFocus && s.FocusEpoch != m.focusEpoch {
		m.focusEpoch = s.FocusEpoch
		if id, ok := engine.ElementRow(s.Focus.ElementID); ok {
			if i := rowIndex(rows, id); i >= 0 {
				m.cursor = i
			}
			if m.editing && id == m.editRow {
				m.input.SetCursor(s.Focus.SelectionEnd)
			}
		}
	}
	m.cursor = clamp(m.cursor, len(rows))
	if m.editing && rowIndex(rows, m.editRow) < 0 {
		// The row went away, e.g. the formula was replaced from outside.
		m.editing = false
		m.input.Blur()
	}
	if m.picker == pickOxide {
		if row, ok := m.currentRow(); !ok || len(s.Options[row.ID]) == 0 {
			m.picker = pickNone
		}
	}
	if m.selected >= len(s.Solutions) {
		m.selected = max(0, len(s.Solutions)-1)
	}
	if s.Busy && !wasBusy {
		return m, m.spinner.Tick
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.picker != pickNone {
		return m.handlePicker(msg)
	}
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Edit):
		return m.startEditing()
	case key.Matches(msg, m.keys.PickOxide):
		m.openOxidePicker()
	case key.Matches(msg, m.keys.AddRow):
		m.send(engine.AddRow(m.currentGroup()))
	case key.Matches(msg, m.keys.AddR2ORO):
		m.send(engine.AddRow(oxide.GroupR2ORO))
	case key.Matches(msg, m.keys.AddR2O3):
		m.send(engine.AddRow(oxide.GroupR2O3))
	case key.Matches(msg, m.keys.AddRO2):
		m.send(engine.AddRow(oxide.GroupRO2))
	case key.Matches(msg, m.keys.DeleteRow):
		if row, ok := m.currentRow(); ok {
			m.send(engine.DeleteRow(row.ID))
		}
	case key.Matches(msg, m.keys.MinMaterials):
		m.send(engine.SetMinMaterials(!m.snap.MinMaterials))
	case key.Matches(msg, m.keys.NextSolution):
		if n := len(m.snap.Solutions); n > 0 {
			m.selected = (m.selected + 1) % n
		}
	case key.Matches(msg, m.keys.PrevSolution):
		if n := len(m.snap.Solutions); n > 0 {
			m.selected = (m.selected - 1 + n) % n
		}
	case key.Matches(msg, m.keys.Materials):
		m.openMaterialPicker()
	case key.Matches(msg, m.keys.Solve):
		m.send(engine.SolveNow())
	}
	return m, nil
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) || key.Matches(msg, m.keys.Edit) {
		m.editing = false
		m.input.Blur()
		m.send(engine.Blur())
		return m, nil
	}
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		// Focus goes first so the persisted write captures the new caret.
		pos := m.input.Position()
		m.send(engine.FocusOn(persist.Focus{
			ElementID:      engine.ValueElement(m.editRow),
			SelectionStart: pos,
			SelectionEnd:   pos,
		}))
		m.send(engine.SetValue(m.editRow, v))
	}
	return m, cmd
}

func (m Model) startEditing() (tea.Model, tea.Cmd) {
	row, ok := m.currentRow()
	if !ok {
		return m, nil
	}
	m.editing = true
	m.editRow = row.ID
	m.input.SetValue(row.Value)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	n := m.input.Position()
	m.send(engine.FocusOn(persist.Focus{ElementID: engine.ValueElement(row.ID), SelectionStart: n, SelectionEnd: n}))
	return m, cmd
}

func (m Model) handlePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picker = pickNone
	case key.Matches(msg, m.keys.Up):
		m.pickIndex = clamp(m.pickIndex-1, len(m.pickItems))
	case key.Matches(msg, m.keys.Down):
		m.pickIndex = clamp(m.pickIndex+1, len(m.pickItems))
	case key.Matches(msg, m.keys.Edit):
		choice := m.pickItems[m.pickIndex]
		switch m.picker {
		case pickOxide:
			if row, ok := m.currentRow(); ok {
				m.send(engine.SelectOxide(row.ID, choice))
			}
		case pickMaterial:
			if slices.Contains(m.snap.Excluded, choice) {
				m.send(engine.EnableMaterial(choice))
			} else {
				m.send(engine.DisableMaterial(choice))
			}
		}
		m.picker = pickNone
	}
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	rows := DisplayOrder(m.snap.Rows)
	if len(rows) == 0 {
		return
	}
	next := clamp(m.cursor+delta, len(rows))
	if next == m.cursor {
		return
	}
	m.cursor = next
	m.send(engine.FocusOn(persist.Focus{ElementID: engine.ValueElement(rows[next].ID)}))
}

func (m *Model) openOxidePicker() {
	row, ok := m.currentRow()
	if !ok {
		return
	}
	items := m.snap.Options[row.ID]
	if len(items) == 0 {
		return
	}
	m.picker = pickOxide
	m.pickItems = items
	m.pickIndex = max(0, slices.Index(items, row.Oxide))
	m.send(engine.FocusOn(persist.Focus{ElementID: engine.OxideElement(row.ID)}))
}

func (m *Model) openMaterialPicker() {
	var items []string
	if m.selected < len(m.snap.Solutions) {
		for _, mat := range m.snap.Solutions[m.selected].Candidate.Materials() {
			items = append(items, mat.Name)
		}
	}
	for _, name := range m.snap.Excluded {
		if !slices.Contains(items, name) {
			items = append(items, name)
		}
	}
	if len(items) == 0 {
		return
	}
	m.picker = pickMaterial
	m.pickItems = items
	m.pickIndex = 0
}

func (m Model) currentRow() (umf.Row, bool) {
	rows := DisplayOrder(m.snap.Rows)
	if m.cursor < 0 || m.cursor >= len(rows) {
		return umf.Row{}, false
	}
	return rows[m.cursor], true
}

func (m Model) currentGroup() oxide.Group {
	if row, ok := m.currentRow(); ok {
		return row.Group
	}
	return oxide.GroupR2ORO
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.spinner.View() + " glaze"
	}

	header := m.styles.Title.Render("glaze")
	if m.snap.MinMaterials {
		header += m.styles.Status.Render("  min materials")
	}
	sections := []string{
		header,
		RenderForm(m.snap, FormView{Cursor: m.cursor, Input: m.input.View(), Edit: m.editing}, m.styles, m.printer),
	}
	if m.picker != pickNone {
		sections = append(sections, m.renderPicker())
	}

	line := m.printer.Render(m.snap.Status)
	if m.snap.Busy {
		line = m.spinner.View() + " " + line
	}
	style := m.styles.Status
	if m.snap.Status.Key == status.SolveFailed {
		style = m.styles.ErrorText
	}
	sections = append(sections, "", style.Render(line))
	if notice := m.printer.Render(m.snap.Notice); notice != "" {
		sections = append(sections, m.styles.Notice.Render(notice))
	}
	if sols := RenderSolutions(m.snap, m.selected, m.styles, m.printer); sols != "" {
		sections = append(sections, "", sols)
	}
	sections = append(sections, "", m.styles.Help.Render(m.help.View(m.keys)))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderPicker() string {
	lines := make([]string, 0, len(m.pickItems))
	for i, item := range m.pickItems {
		label := item
		if m.picker == pickOxide {
			label = oxide.DisplayName(item)
		} else if slices.Contains(m.snap.Excluded, item) {
			label = m.styles.Excluded.Render(item)
		}
		if i == m.pickIndex {
			lines = append(lines, m.styles.Cursor.Render("› ")+label)
		} else {
			lines = append(lines, "  "+label)
		}
	}
	return m.styles.Picker.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func rowIndex(rows []umf.Row, id int) int {
	return slices.IndexFunc(rows, func(r umf.Row) bool { return r.ID == id })
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
