package risk

import (
	"strconv"
	"strings"

	"energydocs-backend/internal/facts"
)

const agreementTypeField = "agreement_type"

// Evaluate applies the rule set to the extracted facts in definition order and
// returns one flag string per triggered rule, prefixed with the rule id.
// It is a pure function of its inputs: no I/O, deterministic output, and it
// never fails. Malformed rule or fact values resolve to "not triggered".
func Evaluate(f *facts.ProjectFacts, rules []Rule) []string {
	flags := make([]string, 0, len(rules))
	if f == nil {
		return flags
	}
	for _, rule := range rules {
		if !dependencyMet(f, rule) {
			continue
		}
		value, present := f.Field(rule.Field)
		if triggered(rule, value, present) {
			flags = append(flags, rule.ID+": "+render(rule, value))
		}
	}
	return flags
}

// dependencyMet applies the rule's dependency gate. A rule whose declared
// dependency field is absent is inapplicable. Gates on the agreement-type
// field additionally require a PPA-style agreement, so PPA-term rules stay
// silent for lease or interconnection documents.
func dependencyMet(f *facts.ProjectFacts, rule Rule) bool {
	if rule.DependsOnField == "" {
		return true
	}
	value, present := f.Field(rule.DependsOnField)
	if !present {
		return false
	}
	if rule.DependsOnField == agreementTypeField {
		return strings.Contains(strings.ToLower(asText(value)), "ppa")
	}
	return true
}

func triggered(rule Rule, value any, present bool) bool {
	// A null field satisfies only is_missing.
	if !present {
		return rule.Condition == CondIsMissing
	}

	switch rule.Condition {
	case CondIsPresent:
		return true
	case CondIsMissing:
		return false
	case CondIsTrue:
		b, ok := value.(bool)
		return ok && b
	case CondIsFalse:
		b, ok := value.(bool)
		return ok && !b
	case CondLessThan:
		if rule.Value == nil {
			return false
		}
		num, ok := asFloat(value)
		return ok && num < *rule.Value
	case CondContainsAny:
		text := strings.ToLower(asText(value))
		for _, kw := range rule.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	case CondNotContainsAll:
		text := strings.ToLower(asText(value))
		for _, kw := range rule.Keywords {
			if kw != "" && !strings.Contains(text, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	case CondParsingFailed:
		n, ok := value.(facts.Number)
		return ok && n.Present && !n.Valid
	default:
		return false
	}
}

func render(rule Rule, value any) string {
	out := rule.Description
	if strings.Contains(out, "{value}") {
		out = strings.ReplaceAll(out, "{value}", formatRuleValue(rule))
	}
	if strings.Contains(out, "{actual}") {
		out = strings.ReplaceAll(out, "{actual}", asText(value))
	}
	if strings.Contains(out, "{count}") {
		out = strings.ReplaceAll(out, "{count}", strconv.Itoa(listLen(value)))
	}
	if strings.Contains(out, "{details}") {
		out = strings.ReplaceAll(out, "{details}", strings.Join(asList(value), "; "))
	}
	return out
}

func formatRuleValue(rule Rule) string {
	if rule.Value == nil {
		return ""
	}
	return strconv.FormatFloat(*rule.Value, 'f', -1, 64)
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case facts.Number:
		if v.Valid {
			return v.Value, true
		}
		return 0, false
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case facts.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []string:
		return strings.Join(v, "; ")
	default:
		return ""
	}
}

func asList(value any) []string {
	if list, ok := value.([]string); ok {
		return list
	}
	return nil
}

func listLen(value any) int {
	return len(asList(value))
}
