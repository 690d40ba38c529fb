// =============================================================================
// ExcelTools - Search Module
// =============================================================================
//
// This module finds rows of a table matching one or more terms. Six match
// modes are supported (contains, exact, starts, ends, regex, fuzzy) and
// multiple terms combine with AND or OR. A search can be restricted to a
// subset of columns and is cancellable between rows.
//
// =============================================================================

package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/exceltoolspro/exceltools/internal/fuzzy"
	"github.com/exceltoolspro/exceltools/internal/table"
)

// Mode selects how a term is compared against a cell.
type Mode string

const (
	ModeContains Mode = "contains"
	ModeExact    Mode = "exact"
	ModeStarts   Mode = "starts"
	ModeEnds     Mode = "ends"
	ModeRegex    Mode = "regex"
	ModeFuzzy    Mode = "fuzzy"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeContains, ModeExact, ModeStarts, ModeEnds, ModeRegex, ModeFuzzy:
		return m, nil
	case "":
		return ModeContains, nil
	}
	return "", fmt.Errorf("unknown search mode %q", s)
}

// Query describes one search over a table.
type Query struct {
	// Terms are the values looked for. A row matches when all terms
	// match (AndMode) or when any term matches.
	Terms []string

	Mode          Mode
	CaseSensitive bool
	AndMode       bool

	// Columns restricts the search to these header names. Empty means
	// all columns.
	Columns []string

	// FuzzyThreshold is the minimum similarity for ModeFuzzy.
	// Zero selects 0.8.
	FuzzyThreshold float64
}

// Result is the outcome of a search.
type Result struct {
	// Matches holds the matching rows under the source headers.
	Matches *table.Table

	// RowIndexes holds the zero-based source row index of each match.
	RowIndexes []int

	// Scanned is the number of rows examined.
	Scanned int
}

// matcher compares one prepared term against a cell value.
type matcher func(cell string) bool

// Run executes the query against the table. The context is checked
// between rows so long scans can be cancelled.
func Run(ctx context.Context, t *table.Table, q Query) (*Result, error) {
	if len(q.Terms) == 0 {
		return nil, fmt.Errorf("no search terms given")
	}
	if q.Mode == "" {
		q.Mode = ModeContains
	}

	cols, err := resolveColumns(t, q.Columns)
	if err != nil {
		return nil, err
	}

	matchers := make([]matcher, 0, len(q.Terms))
	for _, term := range q.Terms {
		m, err := buildMatcher(term, q)
		if err != nil {
			return nil, err
		}
		matchers = append(matchers, m)
	}

	result := &Result{Matches: &table.Table{Headers: t.Headers}}
	for i := range t.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Scanned++

		if rowMatches(t, i, cols, matchers, q.AndMode) {
			result.Matches.Rows = append(result.Matches.Rows, t.Rows[i])
			result.RowIndexes = append(result.RowIndexes, i)
		}
	}
	return result, nil
}

// rowMatches applies every matcher to the row's selected cells.
func rowMatches(t *table.Table, row int, cols []int, matchers []matcher, and bool) bool {
	for _, m := range matchers {
		hit := false
		for _, c := range cols {
			if m(t.Cell(row, c)) {
				hit = true
				break
			}
		}
		if and && !hit {
			return false
		}
		if !and && hit {
			return true
		}
	}
	return and
}

// resolveColumns maps the requested header names to column indexes.
func resolveColumns(t *table.Table, names []string) ([]int, error) {
	if len(names) == 0 {
		cols := make([]int, t.NumCols())
		for i := range cols {
			cols[i] = i
		}
		return cols, nil
	}

	cols := make([]int, 0, len(names))
	for _, name := range names {
		idx := t.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		cols = append(cols, idx)
	}
	return cols, nil
}

// buildMatcher compiles one term into a cell predicate.
func buildMatcher(term string, q Query) (matcher, error) {
	fold := func(s string) string {
		if q.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}

	switch q.Mode {
	case ModeContains:
		t := fold(term)
		return func(cell string) bool { return strings.Contains(fold(cell), t) }, nil

	case ModeStarts:
		t := fold(term)
		return func(cell string) bool { return strings.HasPrefix(fold(cell), t) }, nil

	case ModeEnds:
		t := fold(term)
		return func(cell string) bool { return strings.HasSuffix(fold(cell), t) }, nil

	case ModeExact:
		// Exact matches the term as a whole word within the cell.
		expr := `\b` + regexp.QuoteMeta(term) + `\b`
		if !q.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile term %q: %w", term, err)
		}
		return re.MatchString, nil

	case ModeRegex:
		expr := term
		if !q.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			// A pattern that does not compile matches nothing.
			return func(string) bool { return false }, nil
		}
		return re.MatchString, nil

	case ModeFuzzy:
		threshold := q.FuzzyThreshold
		if threshold <= 0 {
			threshold = 0.8
		}
		t := term
		if !q.CaseSensitive {
			t = strings.ToLower(t)
		}
		return func(cell string) bool {
			c := cell
			if !q.CaseSensitive {
				c = strings.ToLower(c)
			}
			return fuzzy.Ratio(t, c) >= threshold
		}, nil
	}
	return nil, fmt.Errorf("unknown search mode %q", q.Mode)
}

// =============================================================================
// WORD-LIST SEARCH
// =============================================================================

// WordCount pairs a searched word with its number of matching rows.
type WordCount struct {
	Word  string
	Count int
}

// WordListResult is the outcome of a word-list search.
type WordListResult struct {
	// Matches holds every row matched by at least one word. When
	// AddMatchColumn was set, a final column lists the matching words.
	Matches *table.Table

	// Counts holds the per-word row counts, in input order.
	Counts []WordCount

	Scanned int
}

// RunWordList searches a table for every word of a list independently and
// reports per-word counts. Rows matching several words appear once.
func RunWordList(ctx context.Context, t *table.Table, words []string, q Query, addMatchColumn bool) (*WordListResult, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	if q.Mode == "" {
		q.Mode = ModeContains
	}

	cols, err := resolveColumns(t, q.Columns)
	if err != nil {
		return nil, err
	}

	matchers := make([]matcher, len(words))
	for i, w := range words {
		m, err := buildMatcher(w, q)
		if err != nil {
			return nil, err
		}
		matchers[i] = m
	}

	result := &WordListResult{Counts: make([]WordCount, len(words))}
	for i, w := range words {
		result.Counts[i].Word = w
	}

	headers := t.Headers
	if addMatchColumn {
		headers = append(append([]string{}, t.Headers...), "Matched Words")
	}
	result.Matches = &table.Table{Headers: headers}

	for i := range t.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Scanned++

		var hits []string
		for w, m := range matchers {
			matched := false
			for _, c := range cols {
				if m(t.Cell(i, c)) {
					matched = true
					break
				}
			}
			if matched {
				result.Counts[w].Count++
				hits = append(hits, words[w])
			}
		}
		if len(hits) == 0 {
			continue
		}

		row := t.Rows[i]
		if addMatchColumn {
			row = append(append([]string{}, t.Rows[i]...), strings.Join(hits, ", "))
		}
		result.Matches.Rows = append(result.Matches.Rows, row)
	}
	return result, nil
}
