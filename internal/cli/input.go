package cli

import (
	"encoding/json"
	"strings"

	"github.com/roach88/glaze/internal/persist"
	"github.com/roach88/glaze/internal/umf"
)

// parseUMFArg accepts a JSON object, a shared location or a bare fragment
// token. Non-positive entries are dropped; an empty result is an error.
func parseUMFArg(s string) (*umf.UMF, error) {
	s = strings.TrimSpace(s)
	u := umf.New()
	if strings.HasPrefix(s, "{") {
		if err := json.Unmarshal([]byte(s), u); err != nil {
			return nil, &umf.InputParseError{Text: s, Reason: err.Error()}
		}
	} else {
		token := s
		if frag, ok := persist.FragmentOf(s); ok {
			token = frag
		}
		decoded, err := persist.FragmentCodec{}.Decode(token)
		if err != nil {
			return nil, err
		}
		u = decoded
	}
	if u.Len() == 0 {
		return nil, &umf.InputParseError{Text: s, Reason: "no positive ratios"}
	}
	return u, nil
}

// parseWeightsArg reads a JSON object of oxide weight percentages.
func parseWeightsArg(s string) (map[string]float64, error) {
	var weights map[string]float64
	if err := json.Unmarshal([]byte(s), &weights); err != nil {
		return nil, &umf.InputParseError{Text: s, Reason: err.Error()}
	}
	kept := make(map[string]float64, len(weights))
	for k, v := range weights {
		if umf.Valid(v) {
			kept[k] = v
		}
	}
	if len(kept) == 0 {
		return nil, &umf.InputParseError{Text: s, Reason: "no positive weights"}
	}
	return kept, nil
}
