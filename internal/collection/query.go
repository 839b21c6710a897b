package collection

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/aanand-mishra/student-records/internal/search"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/types"
)

// AlgorithmStats are the counters of the last search or sort.
type AlgorithmStats struct {
	Comparisons int
	Swaps       int
	Operations  int // Comparisons + Swaps
}

// Stats summarizes the full collection.
type Stats struct {
	TotalRecords     int
	DistinctPrograms int
	// AverageEnrollmentYear is rounded to the nearest year; 0 when the
	// collection is empty.
	AverageEnrollmentYear int
	LastUpdated           time.Time
}

// Search runs alg over the full collection and makes the matches the
// active view, moving to page 1. An empty or whitespace-only query clears
// the view instead.
func (s *Store) Search(alg search.Algorithm, query, field string) (search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := search.Run(alg, s.records, query, field)
	if err != nil {
		return search.Result{}, fmt.Errorf("Search: %w", err)
	}
	s.metrics.ObserveSearch(string(alg), res.Comparisons, time.Since(start))

	s.algStats = AlgorithmStats{Comparisons: res.Comparisons, Operations: res.Comparisons}
	s.page = 1
	if search.Normalize(query) == "" {
		s.view = nil
		return res, nil
	}
	s.view = res.Records()

	s.log.Debug("search applied",
		slog.String("algorithm", string(alg)),
		slog.String("field", field),
		slog.Int("matches", len(res.Matches)),
		slog.Int("comparisons", res.Comparisons),
	)
	return res, nil
}

// SetSearchView installs records as the active view, e.g. the matches of
// a visualized search.
func (s *Store) SetSearchView(records []types.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = slices.Clone(records)
	if s.view == nil {
		s.view = []types.Student{}
	}
	s.page = 1
}

// SearchView returns the active view and whether one is set.
func (s *Store) SearchView() ([]types.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.view == nil {
		return nil, false
	}
	return slices.Clone(s.view), true
}

// ClearSearch drops the active view and resets the algorithm counters.
func (s *Store) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view = nil
	s.algStats = AlgorithmStats{}
}

// Sort orders the full collection by field with alg and installs the
// result, moving to page 1. On error the collection is unchanged.
func (s *Store) Sort(alg sorting.Algorithm, field string, ascending bool) (sorting.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	res, err := sorting.Run(alg, s.records, field, ascending)
	if err != nil {
		return sorting.Result{}, fmt.Errorf("Sort: %w", err)
	}
	s.metrics.ObserveSort(string(alg), res.Comparisons, res.Swaps, time.Since(start))

	s.applySort(alg, field, ascending, res.Records, res.Comparisons, res.Swaps)

	s.log.Info("collection sorted",
		slog.String("algorithm", string(alg)),
		slog.String("field", field),
		slog.Bool("ascending", ascending),
		slog.Int("comparisons", res.Comparisons),
		slog.Int("swaps", res.Swaps),
	)
	return res, nil
}

// ApplySort installs an already sorted permutation of the collection,
// such as the output of a visualized sort, with its counters. Every
// record must still equal the collection's record with the same id; if
// the collection was edited since records was taken, ApplySort returns
// ErrStaleSort and changes nothing.
func (s *Store) ApplySort(alg sorting.Algorithm, field string, ascending bool, records []types.Student, comparisons, swaps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !samePermutation(s.records, records) {
		return fmt.Errorf("ApplySort: %w", ErrStaleSort)
	}
	s.applySort(alg, field, ascending, slices.Clone(records), comparisons, swaps)
	return nil
}

func (s *Store) applySort(alg sorting.Algorithm, field string, ascending bool, records []types.Student, comparisons, swaps int) {
	s.records = records
	s.sortState = SortState{Algorithm: alg, Field: field, Ascending: ascending}
	s.algStats = AlgorithmStats{
		Comparisons: comparisons,
		Swaps:       swaps,
		Operations:  comparisons + swaps,
	}
	s.page = 1
	s.touch()
}

// samePermutation reports whether next holds exactly the records of
// current, value for value, in any order.
func samePermutation(current, next []types.Student) bool {
	if len(current) != len(next) {
		return false
	}
	byID := make(map[string]types.Student, len(current))
	for _, r := range current {
		byID[r.ID] = r
	}
	for _, r := range next {
		cur, ok := byID[r.ID]
		if !ok || !cur.Equal(r) {
			return false
		}
		delete(byID, r.ID)
	}
	return true
}

// SortState returns the last sort applied. Before any sort it is id,
// ascending.
func (s *Store) SortState() SortState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortState
}

// AlgorithmStats returns the counters of the last search or sort.
func (s *Store) AlgorithmStats() AlgorithmStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.algStats
}

// Stats summarizes the full collection.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalRecords: len(s.records),
		LastUpdated:  s.lastUpdated,
	}
	if len(s.records) == 0 {
		return st
	}

	programs := make(map[string]struct{})
	sum := 0
	for _, r := range s.records {
		programs[r.Program] = struct{}{}
		sum += r.EnrollmentYear
	}
	st.DistinctPrograms = len(programs)
	st.AverageEnrollmentYear = int(math.Round(float64(sum) / float64(len(s.records))))
	return st
}
