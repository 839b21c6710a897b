package visual

import (
	"iter"
	"slices"
	"strings"

	"github.com/aanand-mishra/student-records/internal/search"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/types"
)

// StepKind says what a Step shows.
type StepKind string

const (
	// StepCompare highlights two positions being compared. Counts as one
	// comparison.
	StepCompare StepKind = "compare"
	// StepSwap exchanges two positions. Counts as one swap.
	StepSwap StepKind = "swap"
	// StepSettled marks a position as final.
	StepSettled StepKind = "settled"
	// StepProbe examines one record during a search. Counts as one
	// comparison; Found reports whether it matched.
	StepProbe StepKind = "probe"
)

// Step is one discrete event of a visualized run. I and J are positions
// in the collection as it stands at that moment; J is only meaningful for
// compare and swap. A generator applies a swap or records a hit only
// after its step has been accepted, so a stopped run's working copy
// reflects exactly the steps emitted.
type Step struct {
	Seq   int
	RunID string
	Kind  StepKind
	I, J  int
	Field string
	Found bool
}

// sortWork is the working copy a sort generator reorders in place.
type sortWork struct {
	records []types.Student
	keys    []types.Value
	asc     bool
}

func (w *sortWork) swap(i, j int) {
	w.records[i], w.records[j] = w.records[j], w.records[i]
	w.keys[i], w.keys[j] = w.keys[j], w.keys[i]
}

// bubbleSteps mirrors sorting.BubbleSort step for step.
func bubbleSteps(w *sortWork) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		n := len(w.records)
		pass := 0
		for swapped := true; swapped; pass++ {
			swapped = false
			for i := 0; i < n-1; i++ {
				if !yield(Step{Kind: StepCompare, I: i, J: i + 1}) {
					return
				}
				if sorting.After(w.keys[i], w.keys[i+1], w.asc) {
					if !yield(Step{Kind: StepSwap, I: i, J: i + 1}) {
						return
					}
					w.swap(i, i+1)
					swapped = true
				}
			}
			if last := n - 1 - pass; last >= 0 {
				if !yield(Step{Kind: StepSettled, I: last}) {
					return
				}
			}
		}
		for i := n - 1 - pass; i >= 0; i-- {
			if !yield(Step{Kind: StepSettled, I: i}) {
				return
			}
		}
	}
}

// selectionSteps mirrors sorting.SelectionSort step for step.
func selectionSteps(w *sortWork) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		n := len(w.records)
		for i := 0; i < n-1; i++ {
			extreme := i
			for j := i + 1; j < n; j++ {
				if !yield(Step{Kind: StepCompare, I: extreme, J: j}) {
					return
				}
				if sorting.After(w.keys[extreme], w.keys[j], w.asc) {
					extreme = j
				}
			}
			if extreme != i {
				if !yield(Step{Kind: StepSwap, I: i, J: extreme}) {
					return
				}
				w.swap(i, extreme)
			}
			if !yield(Step{Kind: StepSettled, I: i}) {
				return
			}
		}
		if n > 0 {
			yield(Step{Kind: StepSettled, I: n - 1})
		}
	}
}

// searchWork collects the matches a search generator finds.
type searchWork struct {
	records []types.Student
	query   string
	field   string
	matches []search.Match
}

func (w *searchWork) hit(i int) {
	w.matches = append(w.matches, search.Match{Index: i, Record: w.records[i]})
}

// linearSteps mirrors search.LinearSearch.
func linearSteps(w *searchWork) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		q := search.Normalize(w.query)
		if q == "" {
			return
		}
		for i, rec := range w.records {
			if w.field == types.FieldAll {
				for _, p := range rec.ToRecord().Pairs() {
					found := strings.Contains(strings.ToLower(p.Value), q)
					if !yield(Step{Kind: StepProbe, I: i, Field: p.Name, Found: found}) {
						return
					}
					if found {
						w.hit(i)
						break
					}
				}
				continue
			}

			value, ok := rec.FieldText(w.field)
			if !ok || value == "" {
				continue
			}
			found := strings.Contains(strings.ToLower(value), q)
			if !yield(Step{Kind: StepProbe, I: i, Field: w.field, Found: found}) {
				return
			}
			if found {
				w.hit(i)
			}
		}
	}
}

// sequentialSteps mirrors search.SequentialSearch.
func sequentialSteps(w *searchWork) iter.Seq[Step] {
	if w.field == types.FieldAll {
		return linearSteps(w)
	}
	return func(yield func(Step) bool) {
		q := search.Normalize(w.query)
		if q == "" {
			return
		}
		for i, rec := range w.records {
			value, ok := rec.FieldText(w.field)
			found := ok && value != "" && strings.Contains(strings.ToLower(value), q)
			if !yield(Step{Kind: StepProbe, I: i, Field: w.field, Found: found}) {
				return
			}
			if found {
				w.hit(i)
			}
		}
	}
}

// binarySteps mirrors search.BinarySearch. Probes are reported at the
// probed record's position in the unsorted collection.
func binarySteps(w *searchWork) iter.Seq[Step] {
	if w.field != types.FieldID {
		return linearSteps(w)
	}
	return func(yield func(Step) bool) {
		q := strings.TrimSpace(w.query)
		if q == "" {
			return
		}

		order := make([]int, len(w.records))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(a, b int) int {
			return strings.Compare(w.records[a].ID, w.records[b].ID)
		})

		left, right := 0, len(order)-1
		for left <= right {
			mid := (left + right) / 2
			probed := order[mid]
			c := strings.Compare(w.records[probed].ID, q)

			if c == 0 {
				if yield(Step{Kind: StepProbe, I: probed, Field: types.FieldID, Found: true}) {
					w.hit(slices.IndexFunc(w.records, func(s types.Student) bool { return s.ID == q }))
				}
				return
			}
			if !yield(Step{Kind: StepProbe, I: probed, Field: types.FieldID}) {
				return
			}
			if c < 0 {
				left = mid + 1
			} else {
				right = mid - 1
			}
		}
	}
}
