package search_test

import (
	"reflect"
	"strings"
	"testing"

	"clyst/marketplace-service/internal/search"
)

func fptr(v float64) *float64 { return &v }

// eq compares two ParsedQuery values, treating nil and pointer bounds by value.
func eq(a, b search.ParsedQuery) bool {
	bound := func(p *float64) (float64, bool) {
		if p == nil {
			return 0, false
		}
		return *p, true
	}
	amin, aok := bound(a.MinPrice)
	bmin, bok := bound(b.MinPrice)
	if aok != bok || amin != bmin {
		return false
	}
	amax, aok := bound(a.MaxPrice)
	bmax, bok := bound(b.MaxPrice)
	if aok != bok || amax != bmax {
		return false
	}
	return reflect.DeepEqual(a.Keywords, b.Keywords)
}

// ── Price phrase extraction ─────────────────────────────────────────────────

func TestParse_PricePhrases(t *testing.T) {
	cases := []struct {
		in   string
		want search.ParsedQuery
	}{
		{"under ₹5k", search.ParsedQuery{MaxPrice: fptr(5000), Keywords: []string{}}},
		{"below 300", search.ParsedQuery{MaxPrice: fptr(300), Keywords: []string{}}},
		{"upto 750", search.ParsedQuery{MaxPrice: fptr(750), Keywords: []string{}}},
		{"up to 750", search.ParsedQuery{MaxPrice: fptr(750), Keywords: []string{}}},
		{"less than 1m", search.ParsedQuery{MaxPrice: fptr(1_000_000), Keywords: []string{}}},
		{"<2000", search.ParsedQuery{MaxPrice: fptr(2000), Keywords: []string{}}},
		{"above 2000", search.ParsedQuery{MinPrice: fptr(2000), Keywords: []string{}}},
		{"over 10k", search.ParsedQuery{MinPrice: fptr(10_000), Keywords: []string{}}},
		{"more than rs 150", search.ParsedQuery{MinPrice: fptr(150), Keywords: []string{}}},
		{">500", search.ParsedQuery{MinPrice: fptr(500), Keywords: []string{}}},
		{"between 1000 and 5000", search.ParsedQuery{MinPrice: fptr(1000), MaxPrice: fptr(5000), Keywords: []string{}}},
		{"rs 1200", search.ParsedQuery{MinPrice: fptr(1200), MaxPrice: fptr(1200), Keywords: []string{}}},
		{"rs. 1200", search.ParsedQuery{MinPrice: fptr(1200), MaxPrice: fptr(1200), Keywords: []string{}}},
		{"inr 99", search.ParsedQuery{MinPrice: fptr(99), MaxPrice: fptr(99), Keywords: []string{}}},
		{"₹1200", search.ParsedQuery{MinPrice: fptr(1200), MaxPrice: fptr(1200), Keywords: []string{}}},
	}
	for _, c := range cases {
		got := search.Parse(c.in)
		if !eq(got, c.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

// ── Keywords around price phrases ───────────────────────────────────────────

func TestParse_KeywordsAroundPricePhrase(t *testing.T) {
	cases := []struct {
		in   string
		want search.ParsedQuery
	}{
		{
			"blue portrait under 2000",
			search.ParsedQuery{MaxPrice: fptr(2000), Keywords: []string{"blue", "portrait"}},
		},
		{
			"landscape painting between 2k and 8k",
			search.ParsedQuery{MinPrice: fptr(2000), MaxPrice: fptr(8000), Keywords: []string{"landscape", "painting"}},
		},
		{
			"under 500 clay pottery",
			search.ParsedQuery{MaxPrice: fptr(500), Keywords: []string{"clay", "pottery"}},
		},
		{
			"Abstract Canvas over ₹1,500 by Mira",
			search.ParsedQuery{MinPrice: fptr(1500), Keywords: []string{"abstract", "canvas", "by", "mira"}},
		},
	}
	for _, c := range cases {
		got := search.Parse(c.in)
		if !eq(got, c.want) {
			t.Errorf("Parse(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

// ── Non-price text passes through untouched ─────────────────────────────────

func TestParse_NonPriceText(t *testing.T) {
	inputs := []string{
		"blue portrait",
		"landscape oil painting",
		"more than words", // comparison word with no number is not a price phrase
		"warm AND cozy",
	}
	for _, in := range inputs {
		got := search.Parse(in)
		if got.MinPrice != nil || got.MaxPrice != nil {
			t.Errorf("Parse(%q) extracted price bounds from non-price text: %+v", in, got)
		}
		want := strings.Fields(strings.ToLower(in))
		if !reflect.DeepEqual(got.Keywords, want) {
			t.Errorf("Parse(%q).Keywords = %v, want %v", in, got.Keywords, want)
		}
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		got := search.Parse(in)
		if got.MinPrice != nil || got.MaxPrice != nil || len(got.Keywords) != 0 {
			t.Errorf("Parse(%q) = %+v, want empty query", in, got)
		}
	}
}

// ── Range bounds are auto-ordered ───────────────────────────────────────────

func TestParse_RangeCommutative(t *testing.T) {
	a := search.Parse("between 8000 and 2000")
	b := search.Parse("between 2000 and 8000")
	if !eq(a, b) {
		t.Errorf("reversed range bounds differ: %+v vs %+v", a, b)
	}
	if a.MinPrice == nil || *a.MinPrice != 2000 {
		t.Errorf("MinPrice = %v, want 2000", a.MinPrice)
	}
	if a.MaxPrice == nil || *a.MaxPrice != 8000 {
		t.Errorf("MaxPrice = %v, want 8000", a.MaxPrice)
	}
}

// ── Thousands separators ────────────────────────────────────────────────────

func TestParse_ThousandsSeparators(t *testing.T) {
	got := search.Parse("under rs 1,20,000")
	if got.MaxPrice == nil || *got.MaxPrice != 120000 {
		t.Errorf("Parse(\"under rs 1,20,000\").MaxPrice = %v, want 120000", got.MaxPrice)
	}

	// Re-parsing the already-normalized form yields the identical result.
	again := search.Parse("under rs 120000")
	if !eq(got, again) {
		t.Errorf("normalization not idempotent: %+v vs %+v", got, again)
	}
}

// ── Magnitude suffixes bind directly to digits ──────────────────────────────

func TestParse_MagnitudeSuffixes(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"under 5k", 5000},
		{"under 5K", 5000},
		{"under 2.5k", 2500},
		{"under 1m", 1_000_000},
		{"under 3M", 3_000_000},
	}
	for _, c := range cases {
		got := search.Parse(c.in)
		if got.MaxPrice == nil || *got.MaxPrice != c.want {
			t.Errorf("Parse(%q).MaxPrice = %v, want %v", c.in, got.MaxPrice, c.want)
		}
	}
}

// ── Invariants and ambiguous input ──────────────────────────────────────────

func TestParse_BoundsInvariant(t *testing.T) {
	inputs := []string{
		"between 9k and 1k",
		"rs 400",
		"between 100 and 100",
	}
	for _, in := range inputs {
		got := search.Parse(in)
		if got.MinPrice == nil || got.MaxPrice == nil {
			t.Fatalf("Parse(%q) missing bounds: %+v", in, got)
		}
		if *got.MinPrice > *got.MaxPrice {
			t.Errorf("Parse(%q): MinPrice %v > MaxPrice %v", in, *got.MinPrice, *got.MaxPrice)
		}
	}
}

func TestParse_FirstPatternWins(t *testing.T) {
	// Two price phrases in one query: the highest-priority recognised
	// pattern claims the price; the rest degrades to keywords.
	got := search.Parse("under 5k above 2k")
	if got.MaxPrice == nil || *got.MaxPrice != 5000 {
		t.Errorf("MaxPrice = %v, want 5000", got.MaxPrice)
	}
	if got.MinPrice != nil {
		t.Errorf("MinPrice = %v, want nil (second phrase is not re-parsed)", *got.MinPrice)
	}
}

func TestParse_RangeBeatsSingleBound(t *testing.T) {
	got := search.Parse("between 1k and 3k under 500")
	if got.MinPrice == nil || got.MaxPrice == nil || *got.MinPrice != 1000 || *got.MaxPrice != 3000 {
		t.Errorf("range should win over later bounds, got %+v", got)
	}
}

func TestParse_CurrencyInsideWordIgnored(t *testing.T) {
	// "rs" embedded in a word is not a currency marker.
	got := search.Parse("colors 2000")
	if got.HasPrice() {
		t.Errorf("Parse(\"colors 2000\") extracted a price: %+v", got)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"colors", "2000"}) {
		t.Errorf("Keywords = %v, want [colors 2000]", got.Keywords)
	}
}

func TestParse_NeverNegative(t *testing.T) {
	for _, in := range []string{"under 0", "rs 0", "above 0k"} {
		got := search.Parse(in)
		if got.MinPrice != nil && *got.MinPrice < 0 {
			t.Errorf("Parse(%q) negative MinPrice", in)
		}
		if got.MaxPrice != nil && *got.MaxPrice < 0 {
			t.Errorf("Parse(%q) negative MaxPrice", in)
		}
	}
}
