package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/glaze/internal/engine"
	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/umf"
)

const dividerLine = "────────────────"

// DisplayOrder returns rows grouped R2O/RO, R2O3, RO2, keeping the order
// within each group. The cursor walks rows in this order.
func DisplayOrder(rows []umf.Row) []umf.Row {
	out := make([]umf.Row, 0, len(rows))
	for _, g := range oxide.Groups {
		for _, r := range rows {
			if r.Group == g {
				out = append(out, r)
			}
		}
	}
	return out
}

// FormView describes how the form is drawn around the cursor.
type FormView struct {
	Cursor int    // index into DisplayOrder, -1 for none
	Input  string // replaces the value of the cursor row while editing
	Edit   bool
}

// RenderForm draws the oxide rows by group with the R2O/RO divider.
func RenderForm(snap engine.Snapshot, v FormView, st Styles, p *status.Printer) string {
	ordered := DisplayOrder(snap.Rows)
	var b strings.Builder
	i := 0
	for _, g := range oxide.Groups {
		b.WriteString(st.Group.Render(g.Title()))
		b.WriteByte('\n')
		for _, r := range ordered {
			if r.Group != g {
				continue
			}
			b.WriteString(renderRow(r, i == v.Cursor, v, st, p))
			b.WriteByte('\n')
			if snap.HasDivider && r.ID == snap.Divider {
				b.WriteString(st.Divider.Render("  " + dividerLine))
				b.WriteByte('\n')
			}
			i++
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRow(r umf.Row, atCursor bool, v FormView, st Styles, p *status.Printer) string {
	mark := "  "
	if atCursor {
		mark = st.Cursor.Render("› ")
	}
	name := st.Oxide.Render(Pad(oxide.DisplayName(r.Oxide), 8))
	if r.Oxide == "" {
		name = st.Empty.Render(Pad(p.Sprintf(status.SelectOxide), 8))
	}
	value := r.Value
	if atCursor && v.Edit {
		value = v.Input
	}
	return st.Row.Render(mark + name + " " + value)
}

// RenderSolutions draws the ranked candidates. The selected one also gets its
// per-oxide comparison.
func RenderSolutions(snap engine.Snapshot, selected int, st Styles, p *status.Printer) string {
	if len(snap.Solutions) == 0 {
		return ""
	}
	var parts []string
	for i, sol := range snap.Solutions {
		block := RenderSolution(i, sol, i == selected, snap.Excluded, st, p)
		if i == selected {
			block = st.Selected.Render(block)
		} else {
			block = st.Panel.Render(block)
		}
		parts = append(parts, block)
	}
	return strings.Join(parts, "\n\n")
}

// RenderSolution draws one candidate: title, error label and recipe.
func RenderSolution(i int, sol engine.Solution, expanded bool, excluded []string, st Styles, p *status.Printer) string {
	c := sol.Candidate
	var b strings.Builder
	b.WriteString(st.Title.Render(p.Sprintf(status.SolutionTitle, i+1, c.MaterialsCount)))
	b.WriteString("  ")
	b.WriteString(st.level(c.ErrorLevel()).Render(p.Sprintf(status.ErrorLabel, c.ErrorPercent())))
	for _, m := range c.Materials() {
		line := fmt.Sprintf("  %s %6.2f%%", Pad(m.Name, 24), m.Percent)
		if slices.Contains(excluded, m.Name) {
			line = st.Excluded.Render(line)
		} else {
			line = st.Material.Render(line)
		}
		b.WriteByte('\n')
		b.WriteString(line)
	}
	if expanded {
		b.WriteByte('\n')
		b.WriteString(RenderComparison(sol.Comparison, st, p))
	}
	return b.String()
}

// RenderComparison draws the candidate/target table grouped by oxide group.
// Each line is "oxide candidate / target (delta)" with a marker for extra
// and missing oxides.
func RenderComparison(cmp solution.Comparison, st Styles, p *status.Printer) string {
	var b strings.Builder
	b.WriteString(p.Sprintf(status.DiffLegend))
	for _, g := range cmp.Groups {
		b.WriteByte('\n')
		b.WriteString("  " + g.Group.Title())
		for _, d := range g.Diffs {
			b.WriteByte('\n')
			b.WriteString(st.diff(d.Kind).Render("    " + FormatDiff(d)))
		}
	}
	return b.String()
}

// FormatDiff formats one comparison line without styling.
func FormatDiff(d solution.Diff) string {
	name := Pad(oxide.DisplayName(d.Oxide), 8)
	switch d.Kind {
	case solution.KindExtra:
		return fmt.Sprintf("%s %7.3f / %7s  %s", name, d.Value, "-", d.Kind.Marker())
	case solution.KindMissing:
		return fmt.Sprintf("%s %7s / %7.3f  %s", name, "-", d.Target, d.Kind.Marker())
	}
	return fmt.Sprintf("%s %7.3f / %7.3f  (%.3f)", name, d.Value, d.Target, d.Delta)
}

// Pad right-pads s to n terminal cells. Subscript digits are multi-byte, so
// fmt's byte-based width does not line them up.
func Pad(s string, n int) string {
	w := lipgloss.Width(s)
	if w >= n {
		return s
	}
	return s + strings.Repeat(" ", n-w)
}
