// Package sorting implements the five sort algorithms offered over a
// student collection, each instrumented with comparison and swap
// counters.
//
// Every algorithm works on a copy: the caller's slice is never reordered.
// Whether the sorted copy replaces the collection is the caller's
// decision (see collection.Store.Sort).
package sorting

import (
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Algorithm names a sort algorithm.
type Algorithm string

const (
	Bubble    Algorithm = "bubble"
	Insertion Algorithm = "insertion"
	Selection Algorithm = "selection"
	Merge     Algorithm = "merge"
	Shell     Algorithm = "shell"
)

// Algorithms lists every sort algorithm.
func Algorithms() []Algorithm {
	return []Algorithm{Bubble, Insertion, Selection, Merge, Shell}
}

// ParseAlgorithm maps a user-supplied name onto an Algorithm.
func ParseAlgorithm(name string) (Algorithm, error) {
	a := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Algorithms() {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown sort algorithm %q", name)
}

// Result is the outcome of one sort call.
type Result struct {
	Records     []types.Student
	Comparisons int
	Swaps       int
}

// After reports whether a belongs after b in the requested direction:
// a > b when ascending, a < b when descending. It is the single
// "should move" test shared by bubble, insertion, selection and shell.
func After(a, b types.Value, ascending bool) bool {
	c := types.CompareValues(a, b)
	if ascending {
		return c > 0
	}
	return c < 0
}

// KeepLeft is merge sort's test: take the left element when it does not
// belong after the right one. Ties keep the left element, which makes the
// merge stable.
func KeepLeft(left, right types.Value, ascending bool) bool {
	c := types.CompareValues(left, right)
	if ascending {
		return c <= 0
	}
	return c >= 0
}

// Keys projects every record onto field.
func Keys(records []types.Student, field string) ([]types.Value, error) {
	keys := make([]types.Value, len(records))
	for i, r := range records {
		v, err := r.Field(field)
		if err != nil {
			return nil, fmt.Errorf("sort: %w", err)
		}
		keys[i] = v
	}
	return keys, nil
}

// item pairs a record with its sort key so swaps move both together.
type item struct {
	rec types.Student
	key types.Value
}

func project(records []types.Student, field string) ([]item, error) {
	keys, err := Keys(records, field)
	if err != nil {
		return nil, err
	}
	items := make([]item, len(records))
	for i := range records {
		items[i] = item{rec: records[i], key: keys[i]}
	}
	return items, nil
}

func (r *Result) collect(items []item) {
	r.Records = make([]types.Student, len(items))
	for i, it := range items {
		r.Records[i] = it.rec
	}
}

// Run dispatches to the named algorithm.
func Run(alg Algorithm, records []types.Student, field string, ascending bool) (Result, error) {
	switch alg {
	case Bubble:
		return BubbleSort(records, field, ascending)
	case Insertion:
		return InsertionSort(records, field, ascending)
	case Selection:
		return SelectionSort(records, field, ascending)
	case Merge:
		return MergeSort(records, field, ascending)
	case Shell:
		return ShellSort(records, field, ascending)
	}
	return Result{}, fmt.Errorf("unknown sort algorithm %q", alg)
}

// BubbleSort makes full adjacent-pair passes until a pass swaps nothing.
// One comparison per pair inspected, one swap per exchange.
func BubbleSort(records []types.Student, field string, ascending bool) (Result, error) {
	items, err := project(records, field)
	if err != nil {
		return Result{}, err
	}

	var res Result
	n := len(items)
	for swapped := true; swapped; {
		swapped = false
		for i := 0; i < n-1; i++ {
			res.Comparisons++
			if After(items[i].key, items[i+1].key, ascending) {
				items[i], items[i+1] = items[i+1], items[i]
				res.Swaps++
				swapped = true
			}
		}
	}

	res.collect(items)
	return res, nil
}

// InsertionSort shifts each element left past every predecessor that
// belongs after it. Each shift counts as one comparison and one swap; the
// comparison that ends the shifting is not counted.
func InsertionSort(records []types.Student, field string, ascending bool) (Result, error) {
	items, err := project(records, field)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for i := 1; i < len(items); i++ {
		current := items[i]
		j := i - 1
		for j >= 0 && After(items[j].key, current.key, ascending) {
			res.Comparisons++
			res.Swaps++
			items[j+1] = items[j]
			j--
		}
		items[j+1] = current
	}

	res.collect(items)
	return res, nil
}

// SelectionSort scans the unsorted remainder for its extreme element (the
// minimum ascending, the maximum descending) and swaps it into place. One
// comparison per scan step, one swap only when the extreme is not already
// in position.
func SelectionSort(records []types.Student, field string, ascending bool) (Result, error) {
	items, err := project(records, field)
	if err != nil {
		return Result{}, err
	}

	var res Result
	n := len(items)
	for i := 0; i < n-1; i++ {
		extreme := i
		for j := i + 1; j < n; j++ {
			res.Comparisons++
			if After(items[extreme].key, items[j].key, ascending) {
				extreme = j
			}
		}
		if extreme != i {
			res.Swaps++
			items[i], items[extreme] = items[extreme], items[i]
		}
	}

	res.collect(items)
	return res, nil
}

// MergeSort is top-down merge sort. One comparison per merge step; ties
// take the left element so equal keys keep their original order. It
// performs no swaps.
func MergeSort(records []types.Student, field string, ascending bool) (Result, error) {
	items, err := project(records, field)
	if err != nil {
		return Result{}, err
	}

	var res Result
	var sortRange func([]item) []item
	sortRange = func(s []item) []item {
		if len(s) <= 1 {
			return s
		}
		mid := len(s) / 2
		left := sortRange(s[:mid:mid])
		right := sortRange(s[mid:])

		merged := make([]item, 0, len(s))
		i, j := 0, 0
		for i < len(left) && j < len(right) {
			res.Comparisons++
			if KeepLeft(left[i].key, right[j].key, ascending) {
				merged = append(merged, left[i])
				i++
			} else {
				merged = append(merged, right[j])
				j++
			}
		}
		merged = append(merged, left[i:]...)
		return append(merged, right[j:]...)
	}

	res.collect(sortRange(items))
	return res, nil
}

// ShellSort runs gapped insertion sort with gaps n/2, n/4, ..., 1. Shifts
// are counted the same way InsertionSort counts them.
func ShellSort(records []types.Student, field string, ascending bool) (Result, error) {
	items, err := project(records, field)
	if err != nil {
		return Result{}, err
	}

	var res Result
	n := len(items)
	for gap := n / 2; gap > 0; gap /= 2 {
		for i := gap; i < n; i++ {
			tmp := items[i]
			j := i
			for ; j >= gap && After(items[j-gap].key, tmp.key, ascending); j -= gap {
				res.Comparisons++
				res.Swaps++
				items[j] = items[j-gap]
			}
			items[j] = tmp
		}
	}

	res.collect(items)
	return res, nil
}
