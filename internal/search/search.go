// Package search implements the three search algorithms offered over a
// student collection. Every call starts a fresh comparison counter and
// reports it in the Result, so callers can show how much work each
// algorithm did.
//
// All algorithms treat an empty or whitespace-only query as "no results"
// and return before examining a single record.
package search

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Algorithm names a search algorithm.
type Algorithm string

const (
	Linear     Algorithm = "linear"
	Binary     Algorithm = "binary"
	Sequential Algorithm = "sequential"
)

// ParseAlgorithm maps a user-supplied name onto an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(name))); a {
	case Linear, Binary, Sequential:
		return a, nil
	}
	return "", fmt.Errorf("unknown search algorithm %q", name)
}

// Match is one hit: its position in the searched collection and the
// record found there.
type Match struct {
	Index  int
	Record types.Student
}

// Result is the outcome of one search call.
type Result struct {
	Matches     []Match
	Comparisons int
}

// Records returns just the matched records, in match order.
func (r Result) Records() []types.Student {
	out := make([]types.Student, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Record
	}
	return out
}

// Normalize lower-cases and trims a query the way every substring search
// compares it.
func Normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// CheckField rejects field names records do not carry. "all" is accepted.
func CheckField(field string) error {
	if field == types.FieldAll || types.IsField(field) {
		return nil
	}
	return fmt.Errorf("search: %w: %q", types.ErrUnknownField, field)
}

// Run dispatches to the named algorithm.
func Run(alg Algorithm, records []types.Student, query, field string) (Result, error) {
	switch alg {
	case Linear:
		return LinearSearch(records, query, field)
	case Binary:
		return BinarySearch(records, query, field)
	case Sequential:
		return SequentialSearch(records, query, field)
	}
	return Result{}, fmt.Errorf("unknown search algorithm %q", alg)
}

// LinearSearch does a case-insensitive substring scan.
//
// With field "all" every serialized field of a record is examined in
// order, one comparison each, stopping at the first field that matches.
// With a named field only that field is examined; records whose value
// is empty are skipped without a comparison.
func LinearSearch(records []types.Student, query, field string) (Result, error) {
	if err := CheckField(field); err != nil {
		return Result{}, err
	}

	res := Result{Matches: []Match{}}
	q := Normalize(query)
	if q == "" {
		return res, nil
	}

	for i, rec := range records {
		if field == types.FieldAll {
			for _, p := range rec.ToRecord().Pairs() {
				res.Comparisons++
				if strings.Contains(strings.ToLower(p.Value), q) {
					res.Matches = append(res.Matches, Match{Index: i, Record: rec})
					break
				}
			}
			continue
		}

		value, ok := rec.FieldText(field)
		if !ok || value == "" {
			continue
		}
		res.Comparisons++
		if strings.Contains(strings.ToLower(value), q) {
			res.Matches = append(res.Matches, Match{Index: i, Record: rec})
		}
	}

	return res, nil
}

// SequentialSearch walks the records front to back examining one named
// field per record, counting a comparison for every record visited even
// when its value is empty. With field "all" it behaves like LinearSearch:
// fields are examined in order until the first match within the record.
func SequentialSearch(records []types.Student, query, field string) (Result, error) {
	if err := CheckField(field); err != nil {
		return Result{}, err
	}

	res := Result{Matches: []Match{}}
	q := Normalize(query)
	if q == "" {
		return res, nil
	}

	for i, rec := range records {
		if field == types.FieldAll {
			for _, p := range rec.ToRecord().Pairs() {
				res.Comparisons++
				if strings.Contains(strings.ToLower(p.Value), q) {
					res.Matches = append(res.Matches, Match{Index: i, Record: rec})
					break
				}
			}
			continue
		}

		res.Comparisons++
		value, ok := rec.FieldText(field)
		if ok && value != "" && strings.Contains(strings.ToLower(value), q) {
			res.Matches = append(res.Matches, Match{Index: i, Record: rec})
		}
	}

	return res, nil
}

// SortedByID returns a copy of records ordered by id (byte-wise string
// order), the projection BinarySearch probes.
func SortedByID(records []types.Student) []types.Student {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b types.Student) int {
		return strings.Compare(a.ID, b.ID)
	})
	return sorted
}

// BinarySearch finds the record whose id equals query exactly. It probes
// a copy sorted by id, one comparison per probe, and reports the hit at
// its index in the original (unsorted) collection.
//
// Binary search only makes sense on the unique id; for any other field it
// falls back to LinearSearch.
func BinarySearch(records []types.Student, query, field string) (Result, error) {
	if field != types.FieldID {
		return LinearSearch(records, query, field)
	}

	res := Result{Matches: []Match{}}
	q := strings.TrimSpace(query)
	if q == "" {
		return res, nil
	}

	sorted := SortedByID(records)
	left, right := 0, len(sorted)-1

	for left <= right {
		res.Comparisons++
		mid := (left + right) / 2

		switch c := strings.Compare(sorted[mid].ID, q); {
		case c == 0:
			original := slices.IndexFunc(records, func(s types.Student) bool { return s.ID == q })
			res.Matches = append(res.Matches, Match{Index: original, Record: sorted[mid]})
			return res, nil
		case c < 0:
			left = mid + 1
		default:
			right = mid - 1
		}
	}

	return res, nil
}
