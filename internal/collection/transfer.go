package collection

import (
	"fmt"
	"log/slog"

	"go.uber.org/multierr"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/types"
)

// ImportItemError is one item of an otherwise readable file that could
// not be turned into a record. Item is 1-based.
type ImportItemError struct {
	Item   int
	Fields types.Fields
	Err    error
}

func (e *ImportItemError) Error() string {
	if id := e.Fields[types.FieldID]; id != "" {
		return fmt.Sprintf("record %d (id %s): %v", e.Item, id, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Item, e.Err)
}

func (e *ImportItemError) Unwrap() error {
	return e.Err
}

// ImportReport tallies an import.
type ImportReport struct {
	Succeeded int
	Failed    int
	Errors    []*ImportItemError
}

// Err combines every item error, or returns nil when all items made it.
func (r ImportReport) Err() error {
	var err error
	for _, e := range r.Errors {
		err = multierr.Append(err, e)
	}
	return err
}

// Export serializes the full collection in format f.
func (s *Store) Export(f codec.Format) ([]byte, error) {
	data, err := codec.Encode(f, s.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("Export: %w", err)
	}
	return data, nil
}

// ImportFile imports data, picking the format from name's extension.
func (s *Store) ImportFile(name string, data []byte) (ImportReport, error) {
	f, err := codec.DetectFormat(name)
	if err != nil {
		return ImportReport{}, fmt.Errorf("ImportFile: %w", err)
	}
	return s.Import(data, f)
}

// Import parses data in format f and replaces the collection with every
// item that rebuilds into a valid record. Items that fail are reported,
// not fatal. If the file itself cannot be parsed the error is a
// *codec.ParseError and the collection is left untouched.
func (s *Store) Import(data []byte, f codec.Format) (ImportReport, error) {
	items, err := codec.Decode(f, data)
	if err != nil {
		s.log.Warn("import aborted", slog.String("format", string(f)), slog.String("error", err.Error()))
		return ImportReport{}, fmt.Errorf("Import: %w", err)
	}

	records, report := s.rebuild(items)
	s.install(records)

	s.metrics.ObserveImport(report.Succeeded, report.Failed)
	s.log.Info("import finished",
		slog.String("format", string(f)),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
	)
	for _, e := range report.Errors {
		s.log.Warn("import item rejected", slog.Int("item", e.Item), slog.String("error", e.Err.Error()))
	}
	return report, nil
}

// Snapshot returns the full collection in serialized form.
func (s *Store) Snapshot() []types.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Record, len(s.records))
	for i, r := range s.records {
		out[i] = r.ToRecord()
	}
	return out
}

// Restore replaces the collection with records, typically a snapshot
// loaded from storage. Records that no longer validate are reported the
// same way Import reports bad items.
func (s *Store) Restore(records []types.Record) ImportReport {
	items := make([]types.Fields, len(records))
	for i, r := range records {
		items[i] = r.Fields()
	}

	rebuilt, report := s.rebuild(items)
	s.install(rebuilt)

	s.log.Info("collection restored",
		slog.Int("records", report.Succeeded),
		slog.Int("rejected", report.Failed),
	)
	return report
}

// rebuild turns parsed items into records. A repeated id is an item
// error on every occurrence after the first.
func (s *Store) rebuild(items []types.Fields) ([]types.Student, ImportReport) {
	var report ImportReport
	records := make([]types.Student, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	for i, fields := range items {
		st, err := s.validator.FromFields(fields)
		if err == nil {
			if _, dup := seen[st.ID]; dup {
				err = ErrDuplicateID
			}
		}
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, &ImportItemError{Item: i + 1, Fields: fields, Err: err})
			continue
		}
		seen[st.ID] = struct{}{}
		records = append(records, st)
		report.Succeeded++
	}
	return records, report
}

func (s *Store) install(records []types.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = records
	s.view = nil
	s.page = 1
	s.touch()
}
