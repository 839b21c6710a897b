package search

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/types"
)

var validator = types.NewValidator(func() time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
})

func student(t *testing.T, id, name, program string) types.Student {
	t.Helper()
	s, err := validator.NewStudent(types.StudentInput{
		ID:             id,
		Name:           name,
		BirthDate:      "10/11/2001",
		Email:          "user" + id[len(id)-3:] + "@campus.ac.id",
		Program:        program,
		EnrollmentYear: 2023,
	})
	require.NoError(t, err)
	return s
}

func fiveStudents(t *testing.T) []types.Student {
	names := []string{"Budi Santoso", "Siti Aminah", "Ahmad Rizki", "Dewi Lestari", "Rudi Hermawan"}
	programs := []string{"Informatics", "Information Systems", "Computer Engineering", "Management", "Accounting"}
	out := make([]types.Student, 0, len(names))
	for i := range names {
		out = append(out, student(t, fmt.Sprintf("100000000%d", i+1), names[i], programs[i]))
	}
	return out
}

func TestBinarySearch_FindsOriginalIndex(t *testing.T) {
	records := fiveStudents(t)

	res, err := BinarySearch(records, "1000000003", types.FieldID)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 2, res.Matches[0].Index)
	assert.Equal(t, "Ahmad Rizki", res.Matches[0].Record.Name)
	assert.LessOrEqual(t, res.Comparisons, 3)
}

func TestBinarySearch_UnsortedCollection(t *testing.T) {
	records := fiveStudents(t)
	shuffled := []types.Student{records[4], records[0], records[3], records[2], records[1]}

	res, err := BinarySearch(shuffled, "1000000002", types.FieldID)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 4, res.Matches[0].Index)
}

func TestBinarySearch_Miss(t *testing.T) {
	res, err := BinarySearch(fiveStudents(t), "1000000009", types.FieldID)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, 3, res.Comparisons)
}

func TestBinarySearch_FallsBackToLinear(t *testing.T) {
	records := fiveStudents(t)

	got, err := BinarySearch(records, "rizki", types.FieldName)
	require.NoError(t, err)
	want, err := LinearSearch(records, "rizki", types.FieldName)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, 2, got.Matches[0].Index)
}

func TestEmptyQuery_ShortCircuits(t *testing.T) {
	records := fiveStudents(t)

	for _, alg := range []Algorithm{Linear, Binary, Sequential} {
		for _, q := range []string{"", "   \t"} {
			res, err := Run(alg, records, q, types.FieldAll)
			if alg == Binary {
				res, err = Run(alg, records, q, types.FieldID)
			}
			require.NoError(t, err)
			assert.Empty(t, res.Matches, "%s %q", alg, q)
			assert.Zero(t, res.Comparisons, "%s %q", alg, q)
		}
	}
}

func TestLinearSearch_AllFieldsStopsAtFirstMatch(t *testing.T) {
	records := fiveStudents(t)

	res, err := LinearSearch(records, "  SITI ", types.FieldAll)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 1, res.Matches[0].Index)

	fieldsPerRecord := len(records[0].ToRecord().Pairs())
	// Four full misses plus id and name on the hit.
	assert.Equal(t, 4*fieldsPerRecord+2, res.Comparisons)
}

func TestLinearSearch_NamedField(t *testing.T) {
	records := fiveStudents(t)

	res, err := LinearSearch(records, "inform", types.FieldProgram)
	require.NoError(t, err)
	assert.Len(t, res.Matches, 2)
	assert.Equal(t, 5, res.Comparisons)

	// Regular students carry no visa number: nothing to compare.
	res, err = LinearSearch(records, "visa", types.FieldVisaNumber)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Zero(t, res.Comparisons)
}

func TestSequentialSearch_CountsEveryRecord(t *testing.T) {
	records := fiveStudents(t)

	res, err := SequentialSearch(records, "visa", types.FieldVisaNumber)
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, len(records), res.Comparisons)

	res, err = SequentialSearch(records, "management", types.FieldProgram)
	require.NoError(t, err)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, 3, res.Matches[0].Index)
	assert.Equal(t, []types.Student{records[3]}, res.Records())
}

func TestUnknownField(t *testing.T) {
	_, err := LinearSearch(fiveStudents(t), "x", "gpa")
	assert.True(t, errors.Is(err, types.ErrUnknownField))

	_, err = SequentialSearch(nil, "x", "gpa")
	assert.True(t, errors.Is(err, types.ErrUnknownField))
}

func TestParseAlgorithm(t *testing.T) {
	alg, err := ParseAlgorithm(" Binary ")
	require.NoError(t, err)
	assert.Equal(t, Binary, alg)

	_, err = ParseAlgorithm("jump")
	assert.Error(t, err)
}
