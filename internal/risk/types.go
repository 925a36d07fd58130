package risk

// Condition is the closed set of checks a rule can apply to a fact field.
// Unknown values are treated as never triggered, keeping evaluation total.
type Condition string

const (
	CondIsPresent      Condition = "is_present"
	CondIsMissing      Condition = "is_missing"
	CondIsTrue         Condition = "is_true"
	CondIsFalse        Condition = "is_false"
	CondLessThan       Condition = "less_than"
	CondContainsAny    Condition = "contains_any"
	CondNotContainsAll Condition = "not_contains_all"
	CondParsingFailed  Condition = "parsing_failed"
)

// Rule is one declarative condition-to-flag mapping. Rules are loaded once at
// startup and shared read-only across all in-flight evaluations.
//
// Description templates support four substitutions:
//
//	{value}   the rule's configured comparison value
//	{actual}  the field's resolved value
//	{count}   the length of a list field
//	{details} the list items joined with "; "
type Rule struct {
	ID             string    `yaml:"id"`
	Field          string    `yaml:"field"`
	Condition      Condition `yaml:"condition"`
	Value          *float64  `yaml:"value,omitempty"`
	Keywords       []string  `yaml:"keywords,omitempty"`
	Description    string    `yaml:"description"`
	DependsOnField string    `yaml:"depends_on_field,omitempty"`
}
