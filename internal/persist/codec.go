package persist

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/roach88/glaze/internal/oxide"
	"github.com/roach88/glaze/internal/umf"
)

// DecodeError reports a persisted token that could not be turned back into a
// UMF. Callers log it and keep the formula they already have.
type DecodeError struct {
	Token string
	Err   error
}

func (e *DecodeError) Error() string {
	token := e.Token
	if len(token) > 64 {
		token = token[:64] + "..."
	}
	return fmt.Sprintf("decode persisted umf %q: %v", token, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Codec converts a UMF to and from a channel token.
type Codec interface {
	Encode(u *umf.UMF) (string, error)
	Decode(token string) (*umf.UMF, error)
}

// JSONCodec stores the UMF as a JSON object.
type JSONCodec struct{}

// Encode implements Codec.
func (JSONCodec) Encode(u *umf.UMF) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode umf: %w", err)
	}
	return string(data), nil
}

// Decode implements Codec.
func (JSONCodec) Decode(token string) (*umf.UMF, error) {
	var raw umf.UMF
	if err := json.Unmarshal([]byte(token), &raw); err != nil {
		return nil, &DecodeError{Token: token, Err: err}
	}
	out := umf.New()
	for _, k := range raw.Keys() {
		v, _ := raw.Get(k)
		out.Set(oxide.Normalize(k), v)
	}
	return out, nil
}

// FragmentCodec percent-encodes the JSON form so it can follow a '#'.
type FragmentCodec struct{}

// Encode implements Codec.
func (FragmentCodec) Encode(u *umf.UMF) (string, error) {
	raw, err := JSONCodec{}.Encode(u)
	if err != nil {
		return "", err
	}
	return escapeComponent(raw), nil
}

// Decode implements Codec.
func (FragmentCodec) Decode(token string) (*umf.UMF, error) {
	raw, err := url.PathUnescape(strings.TrimPrefix(token, "#"))
	if err != nil {
		return nil, &DecodeError{Token: token, Err: err}
	}
	return JSONCodec{}.Decode(raw)
}

// escapeComponent percent-encodes everything except the characters browsers
// leave alone in encodeURIComponent, so tokens written here and tokens copied
// from a browser address bar are byte-identical.
func escapeComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
