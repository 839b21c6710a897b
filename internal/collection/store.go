// Package collection owns the ordered sequence of student records and
// everything done to it as a whole: CRUD, pagination, the active search
// view, sorting, statistics and import/export.
//
// Out-of-range index lookups are soft failures (false returns), never
// errors: in a paginated UI they are an expected condition. Operations
// that replace the whole collection (Sort, Replace, Import, Restore)
// install the new sequence in one step or not at all.
package collection

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/types"
)

// DefaultPageSize is the number of records on one page.
const DefaultPageSize = 10

// ErrDuplicateID is returned when a record would share its id with
// another record in the collection.
var ErrDuplicateID = errors.New("student id already exists")

// ErrStaleSort is returned by ApplySort when the sorted records no longer
// match the collection.
var ErrStaleSort = errors.New("collection changed since the sorted records were taken")

// SortState is the last sort applied to the collection.
type SortState struct {
	Algorithm sorting.Algorithm
	Field     string
	Ascending bool
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the page size. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the store's logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithMetrics records collection metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithValidator sets the validator used to rebuild imported records.
func WithValidator(v *types.Validator) Option {
	return func(s *Store) { s.validator = v }
}

// WithClock sets the clock used for LastUpdated.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the collection. The zero value is not usable; call New.
//
// Every method is one critical section, so a background snapshot never
// observes a half-applied mutation.
type Store struct {
	log       *slog.Logger
	metrics   *metrics.Metrics
	validator *types.Validator
	now       func() time.Time

	mu          sync.RWMutex
	records     []types.Student
	view        []types.Student // active search view; nil when none
	page        int
	pageSize    int
	sortState   SortState
	algStats    AlgorithmStats
	lastUpdated time.Time
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		page:      1,
		pageSize:  DefaultPageSize,
		sortState: SortState{Field: types.FieldID, Ascending: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.validator == nil {
		s.validator = types.DefaultValidator
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.lastUpdated = s.now()
	return s
}

// touch stamps a mutation. Callers hold the write lock.
func (s *Store) touch() {
	s.lastUpdated = s.now()
	s.metrics.SetCollectionSize(len(s.records))
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r types.Student) bool { return r.ID == id })
}

// Add appends st and returns its index. The only rejection is a
// duplicate id. An active search view is left as is.
func (s *Store) Add(st types.Student) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(st.ID) >= 0 {
		return -1, ErrDuplicateID
	}
	s.records = append(s.records, st)
	s.touch()

	s.log.Debug("student added", slog.String("id", st.ID), slog.Int("index", len(s.records)-1))
	return len(s.records) - 1, nil
}

// Update replaces the record at index with st, keeping the replaced
// record's CreatedAt. It returns false for an out-of-range index, and
// ErrDuplicateID if st's id belongs to a different record.
func (s *Store) Update(index int, st types.Student) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return false, nil
	}
	if i := s.indexOf(st.ID); i >= 0 && i != index {
		return false, ErrDuplicateID
	}

	st.CreatedAt = s.records[index].CreatedAt
	s.records[index] = st
	s.touch()

	s.log.Debug("student updated", slog.String("id", st.ID), slog.Int("index", index))
	return true, nil
}

// Delete removes the record at index, shifting the rest down. It returns
// false for an out-of-range index.
func (s *Store) Delete(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.records) {
		return false
	}
	id := s.records[index].ID
	s.records = slices.Delete(s.records, index, index+1)
	s.touch()

	s.log.Debug("student deleted", slog.String("id", id), slog.Int("index", index))
	return true
}

// Get returns the record at index.
func (s *Store) Get(index int) (types.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.records) {
		return types.Student{}, false
	}
	return s.records[index], true
}

// GetByID returns the record with the given id and its index.
func (s *Store) GetByID(id string) (int, types.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return -1, types.Student{}, false
	}
	return i, s.records[i], true
}

// All returns a copy of the full collection in order.
func (s *Store) All() []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of records in the full collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Replace installs records as the whole collection, clearing any search
// view and returning to page 1. Duplicate ids are rejected without
// touching the current collection.
func (s *Store) Replace(records []types.Student) error {
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			return ErrDuplicateID
		}
		seen[r.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = slices.Clone(records)
	s.view = nil
	s.page = 1
	s.touch()
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Pagination
// ─────────────────────────────────────────────────────────────────────────────

// active returns the search view when set, else the full collection.
func (s *Store) active() []types.Student {
	if s.view != nil {
		return s.view
	}
	return s.records
}

// PageSize returns the number of records per page.
func (s *Store) PageSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageSize
}

// Page returns the current page number (1-based).
func (s *Store) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// SetPage moves to page if it exists. It returns false otherwise.
func (s *Store) SetPage(page int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page < 1 || page > s.totalPages() {
		return false
	}
	s.page = page
	return true
}

// Paginate returns records [(page-1)*size, page*size) of the active view.
// A page past the end yields an empty slice.
func (s *Store) Paginate(page int) []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := s.active()
	start := (page - 1) * s.pageSize
	if page < 1 || start >= len(view) {
		return []types.Student{}
	}
	end := min(start+s.pageSize, len(view))
	return slices.Clone(view[start:end])
}

// TotalPages returns max(1, ceil(len(active view) / page size)).
func (s *Store) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPages()
}

func (s *Store) totalPages() int {
	n := len(s.active())
	return max(1, (n+s.pageSize-1)/s.pageSize)
}
