package visual

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aanand-mishra/student-records/internal/search"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var validator = types.NewValidator(func() time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
})

func students(t *testing.T, years ...int) []types.Student {
	t.Helper()
	names := []string{"Budi Santoso", "Siti Aminah", "Ahmad Rizki", "Dewi Lestari", "Rudi Hermawan", "Agus Salim", "Rina Wati"}
	out := make([]types.Student, 0, len(years))
	for i, y := range years {
		s, err := validator.NewStudent(types.StudentInput{
			ID:             fmt.Sprintf("2024101%04d", (i*7)%10+1),
			Name:           names[i%len(names)],
			BirthDate:      "15/05/2003",
			Email:          fmt.Sprintf("student%d@univ.ac.id", i),
			Program:        []string{"Informatics", "Management", "Accounting"}[i%3],
			EnrollmentYear: y,
		})
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}

func ids(records []types.Student) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func indexes(matches []search.Match) []int {
	out := make([]int, len(matches))
	for i, m := range matches {
		out[i] = m.Index
	}
	return out
}

func TestSort_CountsMatchEngine(t *testing.T) {
	inputs := [][]int{
		{2005, 2001, 2004, 2002, 2003},
		{2001, 2002, 2003},
		{2010, 2010, 2003, 2001, 2020, 2003, 2015},
		{2012},
		{},
	}
	fields := []string{types.FieldEnrollmentYear, types.FieldName, types.FieldProgram, types.FieldID}

	for _, alg := range []sorting.Algorithm{sorting.Bubble, sorting.Selection} {
		for n, years := range inputs {
			for _, field := range fields {
				for _, asc := range []bool{true, false} {
					name := fmt.Sprintf("%s/%d/%s/asc=%t", alg, n, field, asc)
					t.Run(name, func(t *testing.T) {
						records := students(t, years...)

						want, err := sorting.Run(alg, records, field, asc)
						require.NoError(t, err)

						got, err := New().Sort(context.Background(), alg, records, field, asc)
						require.NoError(t, err)

						assert.Equal(t, want.Comparisons, got.Comparisons, "comparisons")
						assert.Equal(t, want.Swaps, got.Swaps, "swaps")
						assert.Equal(t, ids(want.Records), ids(got.Records))
					})
				}
			}
		}
	}
}

func TestSearch_CountsMatchEngine(t *testing.T) {
	records := students(t, 2024, 2023, 2022, 2024, 2021, 2020, 2019)

	queries := []struct {
		query string
		field string
	}{
		{"siti", types.FieldAll},
		{"a", types.FieldName},
		{"management", types.FieldProgram},
		{"visa", types.FieldVisaNumber},
		{records[3].ID, types.FieldID},
		{"20241019999", types.FieldID},
		{"  ", types.FieldAll},
		{"2022", types.FieldEnrollmentYear},
	}

	for _, alg := range []search.Algorithm{search.Linear, search.Binary, search.Sequential} {
		for _, q := range queries {
			t.Run(fmt.Sprintf("%s/%s/%q", alg, q.field, q.query), func(t *testing.T) {
				want, err := search.Run(alg, records, q.query, q.field)
				require.NoError(t, err)

				got, err := New().Search(context.Background(), alg, records, q.query, q.field)
				require.NoError(t, err)

				assert.Equal(t, want.Comparisons, got.Comparisons)
				assert.Equal(t, indexes(want.Matches), indexes(got.Matches))
			})
		}
	}
}

func TestSort_NotAvailable(t *testing.T) {
	d := New()
	records := students(t, 2003, 2001)

	for _, alg := range []sorting.Algorithm{sorting.Insertion, sorting.Merge, sorting.Shell} {
		_, err := d.Sort(context.Background(), alg, records, types.FieldName, true)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotAvailable), "%s: %v", alg, err)

		var ue *UnsupportedError
		require.True(t, errors.As(err, &ue))
		assert.Equal(t, string(alg), ue.Algorithm)
	}
	assert.Equal(t, Idle, d.State())
}

func TestSort_UnknownField(t *testing.T) {
	_, err := New().Sort(context.Background(), sorting.Bubble, students(t, 2001), "gpa", true)
	assert.True(t, errors.Is(err, types.ErrUnknownField))

	_, err = New().Search(context.Background(), search.Linear, nil, "x", "gpa")
	assert.True(t, errors.Is(err, types.ErrUnknownField))
}

func TestHistory(t *testing.T) {
	var seen []Step
	d := New(WithObserver(func(s Step) { seen = append(seen, s) }))

	out, err := d.Sort(context.Background(), sorting.Bubble, students(t, 2003, 2001, 2002), types.FieldEnrollmentYear, true)
	require.NoError(t, err)

	history := d.History()
	assert.Equal(t, seen, history)
	require.Len(t, history, out.Steps)
	assert.NotEmpty(t, out.RunID)
	for i, s := range history {
		assert.Equal(t, i+1, s.Seq)
		assert.Equal(t, out.RunID, s.RunID)
	}
	assert.Equal(t, Completed, d.State())
	assert.Equal(t, Stats{Comparisons: out.Comparisons, Swaps: out.Swaps, Steps: out.Steps}, d.Stats())

	// Every position ends up settled exactly once.
	settled := map[int]int{}
	for _, s := range history {
		if s.Kind == StepSettled {
			settled[s.I]++
		}
	}
	assert.Equal(t, map[int]int{0: 1, 1: 1, 2: 1}, settled)
}

func TestRunAgainAfterCompletion(t *testing.T) {
	d := New()
	records := students(t, 2003, 2001)

	first, err := d.Sort(context.Background(), sorting.Selection, records, types.FieldEnrollmentYear, true)
	require.NoError(t, err)
	second, err := d.Sort(context.Background(), sorting.Selection, records, types.FieldEnrollmentYear, true)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Steps, d.Stats().Steps)
}

type result struct {
	out Outcome
	err error
}

func TestPauseResume(t *testing.T) {
	var d *Driver
	d = New(WithObserver(func(s Step) {
		if s.Seq == 3 {
			d.Pause()
		}
	}))
	records := students(t, 2005, 2001, 2004, 2002, 2003)

	done := make(chan result, 1)
	go func() {
		out, err := d.Sort(context.Background(), sorting.Bubble, records, types.FieldEnrollmentYear, true)
		done <- result{out, err}
	}()

	require.Eventually(t, func() bool { return d.State() == Paused }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, d.Stats().Steps, "no step may be emitted while paused")

	_, err := d.Sort(context.Background(), sorting.Bubble, records, types.FieldEnrollmentYear, true)
	assert.ErrorIs(t, err, ErrBusy)

	require.True(t, d.Resume())
	res := <-done
	require.NoError(t, res.err)

	want, err := sorting.BubbleSort(records, types.FieldEnrollmentYear, true)
	require.NoError(t, err)
	assert.Equal(t, want.Comparisons, res.out.Comparisons)
	assert.Equal(t, want.Swaps, res.out.Swaps)
	assert.Equal(t, Completed, d.State())
}

func TestResetStopsPausedRun(t *testing.T) {
	var d *Driver
	d = New(WithObserver(func(s Step) {
		if s.Seq == 2 {
			d.Pause()
		}
	}))
	records := students(t, 2005, 2001, 2004, 2002, 2003)

	done := make(chan result, 1)
	go func() {
		out, err := d.Sort(context.Background(), sorting.Selection, records, types.FieldEnrollmentYear, true)
		done <- result{out, err}
	}()

	require.Eventually(t, func() bool { return d.State() == Paused }, time.Second, time.Millisecond)
	d.Reset()

	res := <-done
	assert.ErrorIs(t, res.err, ErrStopped)
	assert.Equal(t, 2, res.out.Steps)
	assert.Len(t, res.out.Records, len(records))

	assert.Equal(t, Idle, d.State())
	assert.Equal(t, Stats{}, d.Stats())
	assert.Empty(t, d.History())
	assert.False(t, d.Resume())
}

func TestContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := New(
		WithDelay(time.Hour),
		WithObserver(func(s Step) {
			if s.Seq == 1 {
				cancel()
			}
		}),
	)

	out, err := d.Search(ctx, search.Sequential, students(t, 2001, 2002, 2003), "x", types.FieldName)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, out.Steps)
	assert.Equal(t, Idle, d.State())
}

// replay applies the swaps in history to a copy of records.
func replay(records []types.Student, history []Step) []types.Student {
	out := append([]types.Student(nil), records...)
	for _, s := range history {
		if s.Kind == StepSwap {
			out[s.I], out[s.J] = out[s.J], out[s.I]
		}
	}
	return out
}

func TestCancelMidRun_OutcomeMatchesHistory(t *testing.T) {
	input := students(t, 2024, 2020, 2023, 2021, 2022)
	before := ids(input)

	for _, alg := range []sorting.Algorithm{sorting.Bubble, sorting.Selection} {
		full, err := New().Sort(context.Background(), alg, input, types.FieldEnrollmentYear, true)
		require.NoError(t, err)

		for stopAt := 1; stopAt < full.Steps; stopAt++ {
			t.Run(fmt.Sprintf("%s/%d", alg, stopAt), func(t *testing.T) {
				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()

				d := New(WithObserver(func(s Step) {
					if s.Seq == stopAt {
						cancel()
					}
				}))
				out, err := d.Sort(ctx, alg, input, types.FieldEnrollmentYear, true)
				require.ErrorIs(t, err, context.Canceled)

				history := d.History()
				require.Len(t, history, stopAt)
				assert.Equal(t, ids(replay(input, history)), ids(out.Records))
				assert.Equal(t, before, ids(input), "input untouched")
			})
		}
	}
}

func TestCancelMidSearch_MatchesOnlyEmittedHits(t *testing.T) {
	input := students(t, 2001, 2002, 2003, 2004)

	for _, alg := range []search.Algorithm{search.Linear, search.Sequential} {
		ctx, cancel := context.WithCancel(context.Background())
		d := New(WithObserver(func(s Step) {
			if s.Seq == 2 {
				cancel()
			}
		}))

		out, err := d.Search(ctx, alg, input, "univ.ac.id", types.FieldEmail)
		cancel()
		require.ErrorIs(t, err, context.Canceled, alg)

		var found []int
		for _, s := range d.History() {
			if s.Found {
				found = append(found, s.I)
			}
		}
		assert.Equal(t, []int{0, 1}, found, alg)
		assert.Equal(t, found, indexes(out.Matches), alg)
	}

	// A binary search cancelled before its hit reports no match.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := New().Search(ctx, search.Binary, input, input[0].ID, types.FieldID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.Matches)
}

func TestSetDelay(t *testing.T) {
	d := New(WithDelay(time.Hour))
	d.SetDelay(0)
	assert.Zero(t, d.Delay())

	start := time.Now()
	_, err := d.Sort(context.Background(), sorting.Bubble, students(t, 2005, 2001, 2004), types.FieldName, true)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestPauseResumeOutsideRun(t *testing.T) {
	d := New()
	assert.False(t, d.Pause())
	assert.False(t, d.Resume())
	d.Reset()
	assert.Equal(t, Idle, d.State())
	assert.Equal(t, "idle", d.State().String())
}
