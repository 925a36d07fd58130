package facts

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrNoJSONObject is returned when the model response carries no JSON object.
var ErrNoJSONObject = errors.New("no JSON object found in response")

// Parse decodes a fact-extraction response. Model output routinely wraps the
// JSON object in prose or markdown fences, so the outermost {...} is isolated
// before unmarshalling. List fields default to empty slices; callers can rely
// on them being non-nil.
func Parse(raw []byte) (*ProjectFacts, error) {
	obj, err := isolateObject(string(raw))
	if err != nil {
		return nil, err
	}

	var f ProjectFacts
	if err := json.Unmarshal([]byte(obj), &f); err != nil {
		return nil, err
	}

	if f.KeyCounterparties == nil {
		f.KeyCounterparties = []string{}
	}
	if f.KeyPermitsMentioned == nil {
		f.KeyPermitsMentioned = []string{}
	}
	if f.KeyEnvironmentalConcerns == nil {
		f.KeyEnvironmentalConcerns = []string{}
	}
	if f.KeyProjectDates == nil {
		f.KeyProjectDates = []string{}
	}
	return &f, nil
}

func isolateObject(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return "", ErrNoJSONObject
	}
	return s[start : end+1], nil
}
