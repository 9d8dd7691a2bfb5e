package media

import "testing"

func TestParseMediaTypeSimple(t *testing.T) {
	mt, err := ParseMediaType("TEXT/PLAIN")
	if err != nil {
		t.Fatalf("ParseMediaType() error: %v", err)
	}
	if mt.Type != "text" || mt.Subtype != "plain" {
		t.Errorf("Type/Subtype = %q/%q, want text/plain (lowercased)", mt.Type, mt.Subtype)
	}
}

func TestParseMediaTypeWithParams(t *testing.T) {
	mt, err := ParseMediaType(`text/html; charset=UTF-8`)
	if err != nil {
		t.Fatalf("ParseMediaType() error: %v", err)
	}
	if len(mt.Params) != 1 || mt.Params[0].Name != "charset" || mt.Params[0].Value != "utf-8" {
		t.Errorf("Params = %+v, want [{charset utf-8}] (charset value lowercased for text/*)", mt.Params)
	}
}

func TestParseMediaTypeQualityAndExtension(t *testing.T) {
	mt, err := ParseMediaType("application/json; q=0.5; ext=foo")
	if err != nil {
		t.Fatalf("ParseMediaType() error: %v", err)
	}
	if !mt.IsRange {
		t.Error("IsRange = false, want true once a q parameter is present")
	}
	if mt.Quality != 0.5 {
		t.Errorf("Quality = %v, want 0.5", mt.Quality)
	}
	if mt.Extension != "ext=foo" {
		t.Errorf("Extension = %q, want %q", mt.Extension, "ext=foo")
	}
}

func TestParseMediaTypeMissingSlashFails(t *testing.T) {
	if _, err := ParseMediaType("textplain"); err == nil {
		t.Error("ParseMediaType(textplain) = nil error, want error")
	}
}

func TestParseMediaTypeInvalidTypeWildcard(t *testing.T) {
	if _, err := ParseMediaType("*/plain"); err == nil {
		t.Error(`ParseMediaType("*/plain") = nil error, want error (only "*/*" may wildcard the type)`)
	}
}

func TestParseMediaTypeFullWildcard(t *testing.T) {
	mt, err := ParseMediaType("*/*")
	if err != nil {
		t.Fatalf("ParseMediaType() error: %v", err)
	}
	if !mt.IsRange {
		t.Error("IsRange = false for */*, want true")
	}
}

func TestMediaTypeStringRoundTrip(t *testing.T) {
	mt, _ := ParseMediaType("text/plain; charset=utf-8")
	if got := mt.String(); got != "text/plain; charset=utf-8" {
		t.Errorf("String() = %q, want %q", got, "text/plain; charset=utf-8")
	}
}

func TestCompatibilityExactMatch(t *testing.T) {
	a, _ := ParseMediaType("text/plain")
	b, _ := ParseMediaType("text/plain")
	if got := a.Compatibility(b); got != PERFECT {
		t.Errorf("Compatibility(exact match) = %v, want PERFECT", got)
	}
}

func TestCompatibilityWildcardWorks(t *testing.T) {
	a, _ := ParseMediaType("text/*")
	b, _ := ParseMediaType("text/plain")
	if got := a.Compatibility(b); got != WORKS {
		t.Errorf("Compatibility(text/* vs text/plain) = %v, want WORKS", got)
	}
}

func TestCompatibilityMismatchIsNope(t *testing.T) {
	a, _ := ParseMediaType("text/plain")
	b, _ := ParseMediaType("application/json")
	if got := a.Compatibility(b); got != NOPE {
		t.Errorf("Compatibility(mismatched types) = %v, want NOPE", got)
	}
}

func TestCompatibilityZeroQualityIsNope(t *testing.T) {
	a, _ := ParseMediaType("text/plain")
	b, _ := ParseMediaType("text/plain; q=0")
	if got := a.Compatibility(b); got != NOPE {
		t.Errorf("Compatibility(other q=0) = %v, want NOPE", got)
	}
}

func TestCompatibilitySentinelNothingAndAllAlwaysWorks(t *testing.T) {
	plain, _ := ParseMediaType("text/plain")
	if got := plain.Compatibility(NOTHING_AND_ALL); got != WORKS {
		t.Errorf("Compatibility(NOTHING_AND_ALL) = %v, want WORKS", got)
	}
	if got := NOTHING.Compatibility(NOTHING); got != PERFECT {
		t.Errorf("Compatibility(NOTHING, NOTHING) = %v, want PERFECT (identity match)", got)
	}
	if got := NOTHING.Compatibility(plain); got != NOPE {
		t.Errorf("Compatibility(NOTHING, text/plain) = %v, want NOPE", got)
	}
}

func TestEqualIgnoresQuality(t *testing.T) {
	a, _ := ParseMediaType("text/plain; q=0.3")
	b, _ := ParseMediaType("text/plain; q=0.9")
	if !a.Equal(b) {
		t.Error("Equal() = false for types differing only in quality, want true")
	}
}

func TestSpecificityOrdersParamsAboveNoParams(t *testing.T) {
	withParams, _ := ParseMediaType("text/plain; charset=utf-8")
	noParams, _ := ParseMediaType("text/plain")
	if Specificity(withParams) >= Specificity(noParams) {
		t.Errorf("Specificity(with params)=%d, Specificity(no params)=%d; want with < without per spec.md's literal table",
			Specificity(withParams), Specificity(noParams))
	}
}

func TestSpecificitySentinelsRankLast(t *testing.T) {
	concrete, _ := ParseMediaType("text/plain")
	if Specificity(NOTHING) <= Specificity(concrete) {
		t.Errorf("Specificity(NOTHING)=%d should exceed any concrete type's rank", Specificity(NOTHING))
	}
	if Specificity(NOTHING_AND_ALL) <= Specificity(NOTHING) {
		t.Errorf("Specificity(NOTHING_AND_ALL)=%d should exceed Specificity(NOTHING)=%d", Specificity(NOTHING_AND_ALL), Specificity(NOTHING))
	}
}

func TestSortBySpecificity(t *testing.T) {
	// SortBySpecificity orders by descending numeric Specificity rank; since
	// SpecNoParams (1) > SpecHasParams (0), the no-params type sorts first.
	a, _ := ParseMediaType("text/plain")
	b, _ := ParseMediaType("text/plain; charset=utf-8")
	types := []*MediaType{b, a}
	SortBySpecificity(types)
	if types[0] != a {
		t.Errorf("SortBySpecificity() put %v first, want the no-params type first per the implemented descending-rank order", types[0])
	}
}
