package umf

import (
	"fmt"
	"strconv"
	"strings"
)

// InputParseError reports a row value that is not a positive number. It is a
// normal state while the user is typing; callers exclude the row rather than
// surfacing the error.
type InputParseError struct {
	Text   string
	Reason string
}

func (e *InputParseError) Error() string {
	return fmt.Sprintf("invalid ratio %q: %s", e.Text, e.Reason)
}

// ParseValue parses the text of a value field.
func ParseValue(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, &InputParseError{Text: text, Reason: "empty"}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, &InputParseError{Text: text, Reason: "not a number"}
	}
	if !Valid(v) {
		return 0, &InputParseError{Text: text, Reason: "must be a positive finite number"}
	}
	return v, nil
}

// FormatValue renders a ratio the way a value field shows it.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
