package umf

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// UMF is an insertion-ordered mapping from oxide symbol to a positive ratio.
// The zero value is an empty formula ready for use.
type UMF struct {
	keys   []string
	values map[string]float64
}

// New returns an empty UMF.
func New() *UMF {
	return &UMF{values: make(map[string]float64)}
}

// FromMap builds a UMF from m, dropping entries that are not positive and
// finite. Keys are inserted in sorted order since maps carry none.
func FromMap(m map[string]float64) *UMF {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	u := New()
	for _, k := range keys {
		u.Set(k, m[k])
	}
	return u
}

// Valid reports whether v may be stored as a ratio.
func Valid(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Set stores v under symbol and reports whether it was stored. Values that are
// not positive and finite are never stored and leave the formula untouched.
// Updating an existing symbol keeps its position.
func (u *UMF) Set(symbol string, v float64) bool {
	if symbol == "" || !Valid(v) {
		return false
	}
	if u.values == nil {
		u.values = make(map[string]float64)
	}
	if _, exists := u.values[symbol]; !exists {
		u.keys = append(u.keys, symbol)
	}
	u.values[symbol] = v
	return true
}

// Get returns the ratio of symbol.
func (u *UMF) Get(symbol string) (float64, bool) {
	if u == nil {
		return 0, false
	}
	v, ok := u.values[symbol]
	return v, ok
}

// Delete removes symbol.
func (u *UMF) Delete(symbol string) {
	if u == nil {
		return
	}
	if _, ok := u.values[symbol]; !ok {
		return
	}
	delete(u.values, symbol)
	for i, k := range u.keys {
		if k == symbol {
			u.keys = append(u.keys[:i], u.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of oxides.
func (u *UMF) Len() int {
	if u == nil {
		return 0
	}
	return len(u.keys)
}

// Keys returns the symbols in insertion order.
func (u *UMF) Keys() []string {
	if u == nil {
		return nil
	}
	out := make([]string, len(u.keys))
	copy(out, u.keys)
	return out
}

// Map returns an unordered copy.
func (u *UMF) Map() map[string]float64 {
	out := make(map[string]float64, u.Len())
	if u == nil {
		return out
	}
	for k, v := range u.values {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy.
func (u *UMF) Clone() *UMF {
	c := New()
	if u == nil {
		return c
	}
	for _, k := range u.keys {
		c.Set(k, u.values[k])
	}
	return c
}

// Equal compares key/value sets, ignoring order.
func (u *UMF) Equal(other *UMF) bool {
	if u.Len() != other.Len() {
		return false
	}
	for _, k := range u.Keys() {
		ov, ok := other.Get(k)
		if !ok || ov != u.values[k] {
			return false
		}
	}
	return true
}

// String renders the formula compactly for logs.
func (u *UMF) String() string {
	data, err := u.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<umf: %v>", err)
	}
	return string(data)
}

// MarshalJSON writes a JSON object with keys in insertion order.
func (u *UMF) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range u.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(u.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, keeping key order. Entries whose value is
// not a positive number are dropped; a non-object document is an error.
func (u *UMF) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("umf must be a JSON object")
	}
	out := New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("umf[%q]: %w", key, err)
		}
		if n, ok := raw.(json.Number); ok {
			if v, err := n.Float64(); err == nil {
				out.Set(key, v)
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*u = *out
	return nil
}
