package engine

import (
	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/persist"
)

// CommandKind enumerates everything a user or the environment can ask of
// the engine.
type CommandKind int

const (
	CmdAddRow CommandKind = iota + 1
	CmdSelectOxide
	CmdSetValue
	CmdDeleteRow
	CmdSetMinMaterials
	CmdDisableMaterial
	CmdEnableMaterial
	CmdFocus
	CmdBlur
	CmdSolveNow
	CmdExternalChange
)

var commandNames = map[CommandKind]string{
	CmdAddRow:          "add_row",
	CmdSelectOxide:     "select_oxide",
	CmdSetValue:        "set_value",
	CmdDeleteRow:       "delete_row",
	CmdSetMinMaterials: "set_min_materials",
	CmdDisableMaterial: "disable_material",
	CmdEnableMaterial:  "enable_material",
	CmdFocus:           "focus",
	CmdBlur:            "blur",
	CmdSolveNow:        "solve_now",
	CmdExternalChange:  "external_change",
}

func (k CommandKind) String() string {
	if s, ok := commandNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseCommandKind is the inverse of String.
func ParseCommandKind(s string) (CommandKind, bool) {
	for k, name := range commandNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Command is one request to change state. Only the fields its Kind uses are
// read.
type Command struct {
	Kind     CommandKind
	Group    oxide.Group
	RowID    int
	Oxide    string
	Text     string
	Flag     bool
	Material string
	Focus    persist.Focus
	Token    string
}

func AddRow(g oxide.Group) Command { return Command{Kind: CmdAddRow, Group: g} }

func SelectOxide(rowID int, symbol string) Command {
	return Command{Kind: CmdSelectOxide, RowID: rowID, Oxide: symbol}
}

func SetValue(rowID int, text string) Command {
	return Command{Kind: CmdSetValue, RowID: rowID, Text: text}
}

func DeleteRow(rowID int) Command { return Command{Kind: CmdDeleteRow, RowID: rowID} }

func SetMinMaterials(on bool) Command { return Command{Kind: CmdSetMinMaterials, Flag: on} }

func DisableMaterial(name string) Command {
	return Command{Kind: CmdDisableMaterial, Material: name}
}

func EnableMaterial(name string) Command {
	return Command{Kind: CmdEnableMaterial, Material: name}
}

// FocusOn records which input has focus and its selection.
func FocusOn(f persist.Focus) Command { return Command{Kind: CmdFocus, Focus: f} }

func Blur() Command { return Command{Kind: CmdBlur} }

// SolveNow skips the quiet period.
func SolveNow() Command { return Command{Kind: CmdSolveNow} }

// ExternalChange reports a token that appeared on the persistence channel
// from outside, e.g. an edited or shared location.
func ExternalChange(token string) Command {
	return Command{Kind: CmdExternalChange, Token: token}
}
