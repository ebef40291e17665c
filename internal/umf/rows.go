package umf

import (
	"errors"
	"fmt"

	"github.com/roach88/glaze/internal/oxide"
)

var (
	// ErrOxideInUse is returned when an oxide is already selected on another row.
	ErrOxideInUse = errors.New("oxide already selected on another row")

	// ErrUnknownRow is returned for a row ID that does not exist.
	ErrUnknownRow = errors.New("unknown row")

	// ErrFixedLayout is returned when a structural edit is attempted on a
	// fixed-field layout.
	ErrFixedLayout = errors.New("rows are fixed in this layout")

	// ErrInvalidGroup is returned for an unknown group tag.
	ErrInvalidGroup = errors.New("invalid oxide group")
)

// Row is one editable (group, oxide, value) triple. Oxide may be empty.
type Row struct {
	ID    int         `json:"id"`
	Group oxide.Group `json:"group"`
	Oxide string      `json:"oxide,omitempty"`
	Value string      `json:"value"`
}

// Layout selects between user-managed rows and a fixed set of fields.
type Layout string

const (
	LayoutDynamic Layout = "dynamic"
	LayoutFixed   Layout = "fixed"
)

// ParseLayout validates a layout name; "" means dynamic.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case "", LayoutDynamic:
		return LayoutDynamic, nil
	case LayoutFixed:
		return LayoutFixed, nil
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

// Field is an oxide/value pair used to seed rows.
type Field struct {
	Oxide string
	Value float64
}

// DefaultFields is the formula shown before anything has been persisted. Zero
// entries produce rows that contribute nothing until edited.
var DefaultFields = []Field{
	{"K2O", 0.086}, {"Na2O", 0.143}, {"MgO", 0.048}, {"CaO", 0.717}, {"SrO", 0},
	{"Al2O3", 0.378}, {"B2O3", 0.265}, {"Fe2O3", 0},
	{"SiO2", 3.144}, {"TiO2", 0},
}

// Default returns the UMF built from DefaultFields.
func Default() *UMF {
	u := New()
	for _, f := range DefaultFields {
		u.Set(f.Oxide, f.Value)
	}
	return u
}

// Rows is the ordered row set and the exclusivity manager for it. Row IDs are
// never reused within one Rows value.
type Rows struct {
	layout Layout
	rows   []Row
	nextID int
}

// NewRows returns an empty row set.
func NewRows(layout Layout) *Rows {
	if layout == "" {
		layout = LayoutDynamic
	}
	return &Rows{layout: layout, nextID: 1}
}

// Layout returns the layout the rows were created with.
func (r *Rows) Layout() Layout { return r.layout }

// All returns a copy of the rows in display order.
func (r *Rows) All() []Row {
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// Len returns the number of rows.
func (r *Rows) Len() int { return len(r.rows) }

// Get returns the row with id.
func (r *Rows) Get(id int) (Row, bool) {
	if i := r.index(id); i >= 0 {
		return r.rows[i], true
	}
	return Row{}, false
}

// InGroup returns the rows of g in display order.
func (r *Rows) InGroup(g oxide.Group) []Row {
	var out []Row
	for _, row := range r.rows {
		if row.Group == g {
			out = append(out, row)
		}
	}
	return out
}

// UsedOxides returns the set of oxides currently selected on any row.
func (r *Rows) UsedOxides() map[string]struct{} {
	used := make(map[string]struct{}, len(r.rows))
	for _, row := range r.rows {
		if row.Oxide != "" {
			used[row.Oxide] = struct{}{}
		}
	}
	return used
}

// AvailableFor lists the oxides a row of group g may offer: canonical members
// present in the registry, then registry extras that classify into g, minus
// oxides used by other rows. selfID's own selection always stays in the list;
// pass 0 for a row that does not exist yet.
func (r *Rows) AvailableFor(g oxide.Group, selfID int, reg *oxide.Registry) []string {
	own := ""
	if row, ok := r.Get(selfID); ok {
		own = row.Oxide
	}
	used := r.UsedOxides()
	offer := func(s string) bool {
		if s == own {
			return true
		}
		_, taken := used[s]
		return !taken
	}
	var out []string
	for _, s := range oxide.Canonical(g) {
		if reg.Has(s) && offer(s) {
			out = append(out, s)
		}
	}
	for _, s := range reg.Extras(g) {
		if offer(s) {
			out = append(out, s)
		}
	}
	return out
}

// Add appends a row. An empty symbol adds an unselected row.
func (r *Rows) Add(g oxide.Group, symbol string, value string) (Row, error) {
	if r.layout == LayoutFixed {
		return Row{}, ErrFixedLayout
	}
	return r.add(g, symbol, value)
}

// AddDefault appends a row to g the way the "add oxide" action does: in R2O_RO
// the first free alkali known to the registry is preselected.
func (r *Rows) AddDefault(g oxide.Group, reg *oxide.Registry) (Row, error) {
	if g == oxide.GroupR2ORO {
		used := r.UsedOxides()
		for _, a := range oxide.Alkalis {
			if _, taken := used[a]; !taken && reg.Has(a) {
				return r.Add(g, a, "0")
			}
		}
	}
	return r.Add(g, "", "0")
}

func (r *Rows) add(g oxide.Group, symbol string, value string) (Row, error) {
	if !g.Valid() {
		return Row{}, fmt.Errorf("%w: %q", ErrInvalidGroup, g)
	}
	if symbol != "" {
		if _, taken := r.UsedOxides()[symbol]; taken {
			return Row{}, fmt.Errorf("%w: %s", ErrOxideInUse, symbol)
		}
	}
	row := Row{ID: r.nextID, Group: g, Oxide: symbol, Value: value}
	r.nextID++
	r.rows = append(r.rows, row)
	return row, nil
}

// Select changes the oxide of a row. Selecting an oxide held by another row is
// rejected; an empty symbol clears the selection.
func (r *Rows) Select(id int, symbol string) error {
	if r.layout == LayoutFixed {
		return ErrFixedLayout
	}
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}
	if symbol != "" && symbol != r.rows[i].Oxide {
		if _, taken := r.UsedOxides()[symbol]; taken {
			return fmt.Errorf("%w: %s", ErrOxideInUse, symbol)
		}
	}
	r.rows[i].Oxide = symbol
	return nil
}

// SetValue replaces the raw text of a row's value field.
func (r *Rows) SetValue(id int, text string) error {
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}
	r.rows[i].Value = text
	return nil
}

// Delete removes a row.
func (r *Rows) Delete(id int) error {
	if r.layout == LayoutFixed {
		return ErrFixedLayout
	}
	i := r.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, id)
	}
	r.rows = append(r.rows[:i], r.rows[i+1:]...)
	return nil
}

// DividerAfter returns the ID of the last alkali row in R2O_RO when the group
// holds both alkali and non-alkali rows.
func (r *Rows) DividerAfter() (int, bool) {
	lastAlkali, others := 0, false
	for _, row := range r.InGroup(oxide.GroupR2ORO) {
		if oxide.IsAlkali(row.Oxide) {
			lastAlkali = row.ID
		} else {
			others = true
		}
	}
	return lastAlkali, lastAlkali != 0 && others
}

// Rebuild derives the UMF from the current rows.
func (r *Rows) Rebuild() *UMF {
	return Rebuild(r.rows)
}

// Reset replaces all rows with ones seeded from fields. IDs keep increasing.
func (r *Rows) Reset(fields []Field) {
	r.rows = r.rows[:0]
	for _, f := range fields {
		// Seeds come from a UMF or a fixed table, so symbols are unique.
		_, _ = r.add(oxide.Classify(f.Oxide), f.Oxide, FormatValue(f.Value))
	}
}

// Load replaces all rows with the contents of u. In the dynamic layout rows
// are grouped R2O (K2O, Na2O, Li2O), RO, R2O3, RO2. In the fixed layout every
// field of fixed gets a row and values come from u when present.
func (r *Rows) Load(u *UMF, fixed []Field) {
	if r.layout == LayoutFixed {
		fields := make([]Field, 0, len(fixed))
		for _, f := range fixed {
			v, _ := u.Get(f.Oxide)
			fields = append(fields, Field{Oxide: f.Oxide, Value: v})
		}
		r.Reset(fields)
		return
	}
	r.Reset(FieldsOf(u))
}

// FieldsOf orders the entries of u for initial row population.
func FieldsOf(u *UMF) []Field {
	buckets := map[oxide.Group][]string{}
	var alkalis []string
	for _, k := range u.Keys() {
		g := oxide.Classify(k)
		if g == oxide.GroupR2ORO && oxide.IsAlkali(k) {
			alkalis = append(alkalis, k)
			continue
		}
		buckets[g] = append(buckets[g], k)
	}
	var ordered []string
	ordered = append(ordered, oxide.SortInGroup(oxide.GroupR2ORO, alkalis)...)
	for _, g := range oxide.Groups {
		ordered = append(ordered, buckets[g]...)
	}
	fields := make([]Field, 0, len(ordered))
	for _, k := range ordered {
		v, _ := u.Get(k)
		fields = append(fields, Field{Oxide: k, Value: v})
	}
	return fields
}

func (r *Rows) index(id int) int {
	for i, row := range r.rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// Rebuild parses every row with a selected oxide and keeps strictly positive
// values. If two rows share an oxide the later one wins.
func Rebuild(rows []Row) *UMF {
	u := New()
	for _, row := range rows {
		if row.Oxide == "" {
			continue
		}
		v, err := ParseValue(row.Value)
		if err != nil {
			continue
		}
		u.Set(row.Oxide, v)
	}
	return u
}
