package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

var _ storage.Storage = (*SQLite)(nil)

func openTemp(t *testing.T) *SQLite {
	t.Helper()
	db, err := New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "storage.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func records() []types.Record {
	created := time.Date(2024, time.March, 4, 5, 6, 7, 123456789, time.UTC)
	return []types.Record{
		{
			ID: "20241010003", Name: "Ahmad Rizki", BirthDate: "10/11/2001",
			Email: "ahmad@student.univ.ac.id", Program: "Computer Engineering", EnrollmentYear: 2023,
			Age: 22, CreatedAt: created, UpdatedAt: created.Add(time.Minute),
		},
		{
			ID: "20241010001", Name: "Budi Santoso", BirthDate: "15/05/2003",
			Email: "budi@student.univ.ac.id", Program: "Informatics", EnrollmentYear: 2024,
			Address: "Jl. Merdeka No. 1", Age: 21, CreatedAt: created, UpdatedAt: created,
			OriginCountry: "Malaysia", VisaNumber: "MY-77", Jenis: string(types.KindInternational),
		},
	}
}

func TestSnapshot_RoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	empty, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	want := records()
	require.NoError(t, db.SaveSnapshot(ctx, want))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveSnapshot_Replaces(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)

	require.NoError(t, db.SaveSnapshot(ctx, records()))
	require.NoError(t, db.SaveSnapshot(ctx, records()[:1]))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "20241010003", got[0].ID)
}

func TestSaveSnapshot_FailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	db := openTemp(t)
	require.NoError(t, db.SaveSnapshot(ctx, records()))

	dup := records()
	dup[1].ID = dup[0].ID
	assert.Error(t, db.SaveSnapshot(ctx, dup))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, records(), got)
}

func TestSaveSnapshot_CancelledContext(t *testing.T) {
	db := openTemp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, db.SaveSnapshot(ctx, records()))
}

func TestNew_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "storage.db")
	db, err := New(&config.Config{StoragePath: path})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveSnapshot(context.Background(), records()))
	assert.FileExists(t, path)
}
