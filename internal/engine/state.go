package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/solution"
	"github.com/roach88/glaze/internal/status"
	"github.com/roach88/glaze/internal/umf"
)

// SchedulerState is the debouncer's position.
type SchedulerState int

const (
	SchedulerIdle SchedulerState = iota
	SchedulerArmed
	SchedulerFiring
)

func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "idle"
	case SchedulerArmed:
		return "armed"
	case SchedulerFiring:
		return "firing"
	}
	return fmt.Sprintf("SchedulerState(%d)", int(s))
}

// Solution is a ranked candidate with its comparison against the target.
type Solution struct {
	Candidate  solution.Candidate  `json:"candidate"`
	Comparison solution.Comparison `json:"comparison"`
}

// Snapshot is an immutable copy of engine state handed to subscribers.
type Snapshot struct {
	Version int64 `json:"version"`

	Layout   umf.Layout       `json:"layout"`
	Rows     []umf.Row        `json:"rows"`
	UMF      *umf.UMF         `json:"umf"`
	Registry *oxide.Registry  `json:"-"`
	Options  map[int][]string `json:"-"` // row id -> selectable oxides
	// Divider is the id of the last alkali row in R2O_RO; HasDivider is
	// false when no R2O/RO divider is drawn.
	Divider    int  `json:"divider"`
	HasDivider bool `json:"has_divider"`

	Solutions []Solution `json:"solutions"`
	Busy      bool       `json:"busy"`
	Scheduler string     `json:"scheduler"`

	MinMaterials bool     `json:"min_materials"`
	Excluded     []string `json:"excluded,omitempty"`

	// Status describes the latest solve; Notice is a persistent warning
	// such as an unreachable solver.
	Status status.Line `json:"status"`
	Notice status.Line `json:"notice"`

	Focus    persist.Focus `json:"focus"`
	HasFocus bool          `json:"has_focus"`
	// FocusEpoch increments whenever focus is restored after a write, so
	// a renderer knows to move its cursor.
	FocusEpoch int `json:"focus_epoch"`

	Issued  int64 `json:"issued"`
	Applied int64 `json:"applied"`
}

// ValueElement is the element id of a row's value input.
func ValueElement(rowID int) string { return fmt.Sprintf("row-%d-value", rowID) }

// OxideElement is the element id of a row's oxide selector.
func OxideElement(rowID int) string { return fmt.Sprintf("row-%d-oxide", rowID) }

// ElementRow extracts the row id from an element id.
func ElementRow(element string) (int, bool) {
	rest, ok := strings.CutPrefix(element, "row-")
	if !ok {
		return 0, false
	}
	idText, _, ok := strings.Cut(rest, "-")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(idText)
	if err != nil {
		return 0, false
	}
	return id, true
}

func cloneSolutions(in []Solution) []Solution {
	return slices.Clone(in)
}
