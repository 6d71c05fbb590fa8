package search

import (
	"fmt"
	"strings"
)

// MatchesText reports whether at least one keyword appears as a
// case-insensitive substring of any of the given text fields. An empty
// keyword list matches everything.
func (q ParsedQuery) MatchesText(fields ...string) bool {
	if len(q.Keywords) == 0 {
		return true
	}
	combined := strings.ToLower(strings.Join(fields, " "))
	for _, kw := range q.Keywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// MatchesPrice reports whether price falls inside the parsed bounds,
// treating an absent bound as unconstrained on that side.
func (q ParsedQuery) MatchesPrice(price float64) bool {
	if q.MinPrice != nil && price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && price > *q.MaxPrice {
		return false
	}
	return true
}

// Matches applies the full listing contract: price bounds conjoined with the
// at-least-one-keyword text match.
func (q ParsedQuery) Matches(price float64, fields ...string) bool {
	return q.MatchesPrice(price) && q.MatchesText(fields...)
}

// FilterColumns names the SQL columns a listing query filters on. Price may
// be empty for listings without a price (posts).
type FilterColumns struct {
	Title       string
	Description string
	Artist      string
	Price       string
}

// WhereSQL renders the parsed query as a SQL fragment to append to a WHERE
// clause (each condition prefixed with " AND "), with positional parameters
// starting at $nextArg. The keyword condition ORs one ILIKE pattern per
// keyword across title, description and artist name, matching the
// at-least-one-keyword contract of MatchesText.
func (q ParsedQuery) WhereSQL(cols FilterColumns, nextArg int) (string, []any) {
	var sb strings.Builder
	var args []any

	if len(q.Keywords) > 0 {
		var ors []string
		for _, kw := range q.Keywords {
			args = append(args, "%"+kw+"%")
			n := nextArg + len(args) - 1
			for _, col := range []string{cols.Title, cols.Description, cols.Artist} {
				if col == "" {
					continue
				}
				ors = append(ors, fmt.Sprintf("%s ILIKE $%d", col, n))
			}
		}
		sb.WriteString(" AND (" + strings.Join(ors, " OR ") + ")")
	}

	if cols.Price != "" {
		if q.MinPrice != nil {
			args = append(args, *q.MinPrice)
			sb.WriteString(fmt.Sprintf(" AND %s >= $%d", cols.Price, nextArg+len(args)-1))
		}
		if q.MaxPrice != nil {
			args = append(args, *q.MaxPrice)
			sb.WriteString(fmt.Sprintf(" AND %s <= $%d", cols.Price, nextArg+len(args)-1))
		}
	}

	return sb.String(), args
}
