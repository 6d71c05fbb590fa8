// Package search converts free-text search phrases into structured listing
// filters: price bounds plus residual keywords.
//
// Recognised price phrases, tried in priority order (first match wins):
//
//	between 2k and 8k        → min=2000, max=8000 (bounds auto-ordered)
//	under / below / upto /
//	up to / less than / <    → upper bound
//	above / over /
//	more than / >            → lower bound
//	rs 1200 / ₹1200 / inr …  → exact price (min == max)
//
// Parsing is best-effort and never fails: anything that is not a recognised
// price phrase stays in the query as keywords.
package search

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParsedQuery is the structured result of interpreting one search phrase.
// A nil bound means unconstrained on that side. Keywords are lowercased,
// in original left-to-right order, and never contain tokens consumed by a
// recognised price phrase.
type ParsedQuery struct {
	MinPrice *float64
	MaxPrice *float64
	Keywords []string
}

// HasPrice reports whether any price bound was extracted.
func (q ParsedQuery) HasPrice() bool { return q.MinPrice != nil || q.MaxPrice != nil }

// boundKind tags which phrase shape a matcher extracts.
type boundKind int

const (
	kindRange boundKind = iota
	kindUpper
	kindLower
	kindExact
)

// amountPat matches one price amount: an optional currency marker (₹, rs,
// rs., inr — input is lowercased before matching), digits with an optional
// decimal part, and an optional magnitude suffix bound directly to the
// digits (k ×1 000, m ×1 000 000). Two capture groups: digits, suffix.
const amountPat = `(?:₹\s*|\b(?:rs\.?|inr)\s*)?(\d+(?:\.\d+)?)([km])?\b`

// priceMatchers are tried in order against the normalized query; the first
// one that matches wins and its span is stripped from the keyword text.
var priceMatchers = []struct {
	kind boundKind
	re   *regexp.Regexp
}{
	{kindRange, regexp.MustCompile(`\bbetween\s+` + amountPat + `\s+and\s+` + amountPat)},
	{kindUpper, regexp.MustCompile(`(?:\b(?:under|below|up\s+to|upto|less\s+than)\b|<)\s*` + amountPat)},
	{kindLower, regexp.MustCompile(`(?:\b(?:above|over|more\s+than)\b|>)\s*` + amountPat)},
	// Exact price requires an explicit currency marker ("rs 1200"), otherwise
	// every bare number in a query would be read as a price.
	{kindExact, regexp.MustCompile(`(?:₹|\b(?:rs\.?|inr))\s*(\d+(?:\.\d+)?)([km])?\b`)},
}

// stopwords are comparison/currency leftovers discarded from the residual
// keyword text after a price phrase has been stripped.
var stopwords = map[string]struct{}{
	"under": {}, "below": {}, "upto": {}, "up": {}, "to": {},
	"less": {}, "more": {}, "than": {}, "above": {}, "over": {},
	"between": {}, "and": {}, "for": {}, "price": {}, "priced": {},
	"rs": {}, "rs.": {}, "inr": {}, "₹": {}, "<": {}, ">": {},
}

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	thousandsSep = regexp.MustCompile(`(\d),(\d)`)
)

// Parse interprets a free-text search phrase. It never returns an error:
// malformed or unrecognised price expressions degrade to plain keywords.
func Parse(raw string) ParsedQuery {
	q := normalize(raw)
	if q == "" {
		return ParsedQuery{Keywords: []string{}}
	}

	for _, m := range priceMatchers {
		loc := m.re.FindStringSubmatchIndex(q)
		if loc == nil {
			continue
		}

		var parsed ParsedQuery
		switch m.kind {
		case kindRange:
			a := amount(group(q, loc, 1), group(q, loc, 2))
			b := amount(group(q, loc, 3), group(q, loc, 4))
			lo, hi := math.Min(a, b), math.Max(a, b)
			parsed.MinPrice, parsed.MaxPrice = &lo, &hi
		case kindUpper:
			v := amount(group(q, loc, 1), group(q, loc, 2))
			parsed.MaxPrice = &v
		case kindLower:
			v := amount(group(q, loc, 1), group(q, loc, 2))
			parsed.MinPrice = &v
		case kindExact:
			lo := amount(group(q, loc, 1), group(q, loc, 2))
			hi := lo
			parsed.MinPrice, parsed.MaxPrice = &lo, &hi
		}

		remainder := q[:loc[0]] + " " + q[loc[1]:]
		parsed.Keywords = keywords(remainder, true)
		return parsed
	}

	// No price phrase: the whole normalized input becomes keywords.
	return ParsedQuery{Keywords: keywords(q, false)}
}

// normalize lowercases, collapses whitespace runs, and removes
// thousands-separator commas inside digit runs ("1,200" → "1200") so the
// matchers always see plain digit sequences.
func normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = spaceRun.ReplaceAllString(s, " ")
	// Repeat until stable: a single pass can leave a separator behind in
	// runs like "1,2,3" because matches do not overlap.
	for {
		out := thousandsSep.ReplaceAllString(s, "$1$2")
		if out == s {
			return out
		}
		s = out
	}
}

// keywords tokenizes the residual text. When a price phrase was stripped,
// pure stop-word/comparison leftovers are discarded too; otherwise every
// token is kept so that non-price queries round-trip untouched.
func keywords(s string, dropStopwords bool) []string {
	fields := strings.Fields(s)
	kws := make([]string, 0, len(fields))
	for _, f := range fields {
		if dropStopwords {
			if _, ok := stopwords[f]; ok {
				continue
			}
		}
		kws = append(kws, f)
	}
	return kws
}

// amount converts a matched digit run plus optional magnitude suffix into
// its numeric value. The digits have already been regex-validated, so the
// parse cannot fail in practice; a zero value is the graceful fallback.
func amount(digits, suffix string) float64 {
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	switch suffix {
	case "k":
		v *= 1_000
	case "m":
		v *= 1_000_000
	}
	return v
}

// group extracts capture group n from a FindStringSubmatchIndex result,
// returning "" for non-participating groups.
func group(s string, loc []int, n int) string {
	start, end := loc[2*n], loc[2*n+1]
	if start < 0 {
		return ""
	}
	return s[start:end]
}
