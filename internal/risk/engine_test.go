package risk

import (
	"reflect"
	"strings"
	"testing"

	"energydocs-backend/internal/facts"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func f64Ptr(v float64) *float64 {
	return &v
}

func flagsByID(flags []string) map[string]string {
	byID := map[string]string{}
	for _, f := range flags {
		id, rest, _ := strings.Cut(f, ": ")
		byID[id] = rest
	}
	return byID
}

func TestEvaluateShortTermFlag(t *testing.T) {
	f := &facts.ProjectFacts{
		AgreementType:   strPtr("Power Purchase Agreement (PPA)"),
		TermLengthYears: facts.Num(10),
	}
	rules := []Rule{{
		ID:             "SHORT_PPA_TERM",
		Field:          "term_length_years",
		Condition:      CondLessThan,
		Value:          f64Ptr(15),
		DependsOnField: "agreement_type",
		Description:    "term is {actual} years, below the {value}-year threshold",
	}}

	flags := Evaluate(f, rules)
	if len(flags) != 1 {
		t.Fatalf("expected exactly one flag, got %v", flags)
	}
	if !strings.HasPrefix(flags[0], "SHORT_PPA_TERM: ") {
		t.Fatalf("flag should carry rule id prefix: %q", flags[0])
	}
	if !strings.Contains(flags[0], "10") || !strings.Contains(flags[0], "15") {
		t.Fatalf("flag should show actual and threshold: %q", flags[0])
	}
}

func TestEvaluateDependencyGate(t *testing.T) {
	rules := Default()

	// No agreement type at all: every PPA-gated rule stays silent.
	noType := &facts.ProjectFacts{TermLengthYears: facts.Num(5)}
	byID := flagsByID(Evaluate(noType, rules))
	for _, id := range []string{"SHORT_PPA_TERM", "NO_GUARANTEED_OUTPUT", "NO_DELIVERY_POINT", "MISSING_OFFTAKER"} {
		if _, ok := byID[id]; ok {
			t.Fatalf("%s should not fire without an agreement type", id)
		}
	}

	// A lease is not a PPA, so the gate stays closed even with a type present.
	lease := &facts.ProjectFacts{
		AgreementType:   strPtr("Land Lease Agreement"),
		TermLengthYears: facts.Num(5),
	}
	if _, ok := flagsByID(Evaluate(lease, rules))["SHORT_PPA_TERM"]; ok {
		t.Fatalf("SHORT_PPA_TERM should not fire for a lease")
	}

	ppa := &facts.ProjectFacts{
		AgreementType:   strPtr("Solar Power Purchase Agreement (PPA)"),
		TermLengthYears: facts.Num(5),
	}
	if _, ok := flagsByID(Evaluate(ppa, rules))["SHORT_PPA_TERM"]; !ok {
		t.Fatalf("SHORT_PPA_TERM should fire for a 5-year PPA")
	}
}

func TestEvaluateFalseBoolIsPresent(t *testing.T) {
	rules := []Rule{
		{ID: "MISSING_LD", Field: "liquidated_damages_mention", Condition: CondIsMissing, Description: "missing"},
		{ID: "NO_LD", Field: "liquidated_damages_mention", Condition: CondIsFalse, Description: "not mentioned"},
	}
	f := &facts.ProjectFacts{LiquidatedDamagesMention: boolPtr(false)}

	byID := flagsByID(Evaluate(f, rules))
	if _, ok := byID["MISSING_LD"]; ok {
		t.Fatalf("an explicit false is present, not missing")
	}
	if _, ok := byID["NO_LD"]; !ok {
		t.Fatalf("is_false should fire on an explicit false")
	}
}

func TestEvaluateParseFailure(t *testing.T) {
	f := &facts.ProjectFacts{CapacityMW: facts.RawNum("about 150 MW")}
	rules := []Rule{
		{ID: "SMALL_PROJECT", Field: "capacity_mw", Condition: CondLessThan, Value: f64Ptr(5), Description: "small"},
		{ID: "CAPACITY_PARSE_ERROR", Field: "capacity_mw", Condition: CondParsingFailed, Description: "unreadable '{actual}'"},
	}

	byID := flagsByID(Evaluate(f, rules))
	if _, ok := byID["SMALL_PROJECT"]; ok {
		t.Fatalf("less_than must not fire on an unparseable number")
	}
	desc, ok := byID["CAPACITY_PARSE_ERROR"]
	if !ok {
		t.Fatalf("parsing_failed should fire on an unparseable number")
	}
	if !strings.Contains(desc, "about 150 MW") {
		t.Fatalf("flag should echo the raw value: %q", desc)
	}
}

func TestEvaluateListTemplates(t *testing.T) {
	f := &facts.ProjectFacts{
		KeyEnvironmentalConcerns: []string{"wetland impact", "bat habitat"},
		MitigationMentioned:      boolPtr(false),
	}

	byID := flagsByID(Evaluate(f, Default()))
	desc, ok := byID["ENVIRONMENTAL_CONCERNS"]
	if !ok {
		t.Fatalf("ENVIRONMENTAL_CONCERNS should fire")
	}
	if !strings.Contains(desc, "2") || !strings.Contains(desc, "wetland impact; bat habitat") {
		t.Fatalf("flag should carry count and details: %q", desc)
	}
	if _, ok := byID["NO_MITIGATION"]; !ok {
		t.Fatalf("NO_MITIGATION should fire when concerns exist and mitigation is false")
	}
}

func TestEvaluateNoMitigationGatedOnConcerns(t *testing.T) {
	f := &facts.ProjectFacts{MitigationMentioned: boolPtr(false)}
	if _, ok := flagsByID(Evaluate(f, Default()))["NO_MITIGATION"]; ok {
		t.Fatalf("NO_MITIGATION should stay silent without recorded concerns")
	}
}

func TestEvaluateContainsAny(t *testing.T) {
	f := &facts.ProjectFacts{
		EnvironmentalAttributesOwnership: strPtr("All RECs shall remain with the Seller."),
	}
	byID := flagsByID(Evaluate(f, Default()))
	if _, ok := byID["SELLER_RETAINS_RECS"]; !ok {
		t.Fatalf("SELLER_RETAINS_RECS should match case-insensitively")
	}
	if _, ok := byID["UNCLEAR_REC_OWNERSHIP"]; ok {
		t.Fatalf("UNCLEAR_REC_OWNERSHIP should not fire when ownership is stated")
	}
}

func TestEvaluateEmptyFacts(t *testing.T) {
	flags := Evaluate(&facts.ProjectFacts{}, Default())
	byID := flagsByID(flags)
	// Ungated is_missing rules fire; everything else stays silent.
	for _, id := range []string{"MISSING_CAPACITY", "MISSING_DEVELOPER", "NO_PERMITS", "NO_REGULATOR", "UNCLEAR_REC_OWNERSHIP"} {
		if _, ok := byID[id]; !ok {
			t.Fatalf("%s should fire on empty facts, got %v", id, flags)
		}
	}
	if len(flags) != 5 {
		t.Fatalf("expected exactly the 5 ungated missing-field flags, got %v", flags)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	f := &facts.ProjectFacts{
		AgreementType:            strPtr("PPA"),
		TermLengthYears:          facts.Num(8),
		KeyEnvironmentalConcerns: []string{"noise"},
	}
	first := Evaluate(f, Default())
	for i := 0; i < 10; i++ {
		if got := Evaluate(f, Default()); !reflect.DeepEqual(got, first) {
			t.Fatalf("evaluation order changed between runs: %v vs %v", got, first)
		}
	}
}

func TestEvaluateNilFacts(t *testing.T) {
	if flags := Evaluate(nil, Default()); len(flags) != 0 {
		t.Fatalf("nil facts should produce no flags, got %v", flags)
	}
}

func TestDensityFlag(t *testing.T) {
	sparse := &facts.ProjectFacts{
		CapacityMW:      facts.Num(2),
		ProjectAreaSize: strPtr("approximately 1000 acres"),
	}
	flag, ok := DensityFlag(sparse)
	if !ok {
		t.Fatalf("expected a low-density flag")
	}
	if !strings.HasPrefix(flag, "LOW_DENSITY: ") || !strings.Contains(flag, "0.002") {
		t.Fatalf("unexpected flag %q", flag)
	}

	dense := &facts.ProjectFacts{
		CapacityMW:      facts.Num(150),
		ProjectAreaSize: strPtr("850 acres"),
	}
	if _, ok := DensityFlag(dense); ok {
		t.Fatalf("dense project should not be flagged")
	}

	for name, f := range map[string]*facts.ProjectFacts{
		"no capacity":      {ProjectAreaSize: strPtr("1000 acres")},
		"unparsed capacity": {CapacityMW: facts.RawNum("a lot"), ProjectAreaSize: strPtr("1000 acres")},
		"no area":          {CapacityMW: facts.Num(2)},
		"non-acre area":    {CapacityMW: facts.Num(2), ProjectAreaSize: strPtr("4 square km")},
		"unparseable area": {CapacityMW: facts.Num(2), ProjectAreaSize: strPtr("several acres")},
	} {
		if _, ok := DensityFlag(f); ok {
			t.Fatalf("%s should skip the density check", name)
		}
	}
}
