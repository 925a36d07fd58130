package facts

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a tolerant numeric scalar. Extraction models return numbers as
// JSON numbers ("capacity_mw": 150) or as strings ("150 MW", "fifteen"), and
// a malformed value must be kept rather than dropped so rule evaluation can
// flag it. Present reports whether the field appeared at all (null counts as
// absent); Valid reports whether Raw coerced to a float64.
type Number struct {
	Raw     string
	Value   float64
	Valid   bool
	Present bool
}

// Num builds a clean Number from a float, for tests and manual construction.
func Num(v float64) Number {
	return Number{
		Raw:     strconv.FormatFloat(v, 'f', -1, 64),
		Value:   v,
		Valid:   true,
		Present: true,
	}
}

// RawNum builds an unparseable-but-present Number.
func RawNum(raw string) Number {
	n := Number{Raw: raw, Present: true}
	if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		n.Value = v
		n.Valid = true
	}
	return n
}

// UnmarshalJSON accepts a JSON number, a numeric string, any other string
// (kept raw, marked invalid), or null (absent). It never returns an error for
// scalar input; only structurally impossible input (objects, arrays) fails.
func (n *Number) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*n = Number{}
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = Number{Raw: trimmed, Value: f, Valid: true, Present: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*n = RawNum(s)
	return nil
}

// MarshalJSON writes null when absent, a number when valid, and the raw
// string otherwise, so a round trip preserves what the extractor produced.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Present {
		return []byte("null"), nil
	}
	if n.Valid {
		return json.Marshal(n.Value)
	}
	return json.Marshal(n.Raw)
}

// String returns the raw text, or the formatted value when no raw form exists.
func (n Number) String() string {
	if n.Raw != "" {
		return n.Raw
	}
	if n.Valid {
		return strconv.FormatFloat(n.Value, 'f', -1, 64)
	}
	return ""
}
