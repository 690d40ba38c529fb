// =============================================================================
// ExcelTools - Compare Module
// =============================================================================
//
// This module checks which key values of one table exist in another, with an
// optional fuzzy fallback for near matches and a containment mode for keys
// embedded in longer text. The output splits the source rows into found and
// missing sets, annotated with what matched.
//
// =============================================================================

package compare

import (
	"context"
	"fmt"
	"strings"

	"github.com/exceltoolspro/exceltools/internal/fuzzy"
	"github.com/exceltoolspro/exceltools/internal/table"
)

// Options controls a comparison.
type Options struct {
	// SourceKey names the column of the source table holding the values
	// to look up. TargetKey names the column searched in the target.
	SourceKey string
	TargetKey string

	// Fuzzy enables a similarity fallback when no exact match exists.
	Fuzzy bool

	// FuzzyThreshold is the minimum similarity for a fuzzy hit.
	// Zero selects 0.8.
	FuzzyThreshold float64

	// Containment also accepts target values that contain the source
	// key as a substring, for keys buried in free text.
	Containment bool

	CaseSensitive bool
}

// Stats summarizes a comparison.
type Stats struct {
	SourceRows   int
	TargetRows   int
	ExactMatches int
	FuzzyMatches int
	Missing      int
}

// Result is the outcome of a comparison. Found and Missing carry the
// source headers plus annotation columns.
type Result struct {
	Found   *table.Table
	Missing *table.Table
	Stats   Stats
}

// Run compares source keys against target keys. The context is checked
// between source rows.
func Run(ctx context.Context, source, target *table.Table, opts Options) (*Result, error) {
	srcIdx := source.ColumnIndex(opts.SourceKey)
	if srcIdx < 0 {
		return nil, fmt.Errorf("column %q not found in source table", opts.SourceKey)
	}
	targetKey := opts.TargetKey
	if targetKey == "" {
		targetKey = opts.SourceKey
	}
	tgtIdx := target.ColumnIndex(targetKey)
	if tgtIdx < 0 {
		return nil, fmt.Errorf("column %q not found in target table", targetKey)
	}

	threshold := opts.FuzzyThreshold
	if threshold <= 0 {
		threshold = 0.8
	}

	fold := func(s string) string {
		s = strings.TrimSpace(s)
		if opts.CaseSensitive {
			return s
		}
		return strings.ToLower(s)
	}

	// Exact lookups go through a set; fuzzy and containment scan the
	// raw values.
	targetSet := make(map[string]string, target.NumRows())
	targetValues := make([]string, 0, target.NumRows())
	for i := range target.Rows {
		v := strings.TrimSpace(target.Cell(i, tgtIdx))
		if v == "" {
			continue
		}
		targetValues = append(targetValues, v)
		if _, ok := targetSet[fold(v)]; !ok {
			targetSet[fold(v)] = v
		}
	}

	stats := Stats{SourceRows: source.NumRows(), TargetRows: target.NumRows()}

	foundHeaders := append(append([]string{}, source.Headers...), "Matched Value", "Match Type")
	found := &table.Table{Headers: foundHeaders}
	missing := &table.Table{Headers: append([]string{}, source.Headers...)}

	for i := range source.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := strings.TrimSpace(source.Cell(i, srcIdx))
		matched, matchType := "", ""

		if key != "" {
			if v, ok := targetSet[fold(key)]; ok {
				matched, matchType = v, "exact"
			}
			if matched == "" && opts.Containment {
				for _, v := range targetValues {
					if strings.Contains(fold(v), fold(key)) {
						matched, matchType = v, "contains"
						break
					}
				}
			}
			if matched == "" && opts.Fuzzy {
				best, bestScore := "", 0.0
				for _, v := range targetValues {
					if score := fuzzy.Ratio(fold(key), fold(v)); score > bestScore {
						best, bestScore = v, score
					}
				}
				if bestScore >= threshold {
					matched, matchType = best, "fuzzy"
				}
			}
		}

		if matched == "" {
			stats.Missing++
			missing.Rows = append(missing.Rows, source.Rows[i])
			continue
		}
		if matchType == "fuzzy" {
			stats.FuzzyMatches++
		} else {
			stats.ExactMatches++
		}
		row := append(append([]string{}, source.Rows[i]...), matched, matchType)
		found.Rows = append(found.Rows, row)
	}

	return &Result{Found: found, Missing: missing, Stats: stats}, nil
}
