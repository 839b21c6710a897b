package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// encodeCSV writes a header row, then one row per record. Values
// containing a comma or quote are quoted with embedded quotes doubled
// (RFC 4180, handled by encoding/csv).
func encodeCSV(records []types.Record) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}

	header := csvHeader(records)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("encode csv: header: %w", err)
	}
	for i, r := range records {
		fields := r.Fields()
		row := make([]string, len(header))
		for j, name := range header {
			row[j] = fields[name]
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("encode csv: row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// csvHeader is the first record's field names, extended with any field a
// later record carries (an international student after a regular one),
// all in canonical order.
func csvHeader(records []types.Record) []string {
	present := make(map[string]bool)
	for _, r := range records {
		for _, p := range r.Pairs() {
			present[p.Name] = true
		}
	}

	header := make([]string, 0, len(present))
	for _, name := range types.FieldNames() {
		if present[name] {
			header = append(header, name)
		}
	}
	return header
}

// decodeCSV reads the header row and maps every following row onto it.
// Short rows leave the missing fields empty; extra values are ignored.
func decodeCSV(data []byte) ([]types.Fields, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []types.Fields{}, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, parseError(CSV, err,
				fmt.Sprintf("line %d, column %d: %v", pe.Line, pe.Column, pe.Err))
		}
		return nil, parseError(CSV, err)
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	out := make([]types.Fields, 0, len(rows)-1)
	for _, row := range rows[1:] {
		f := make(types.Fields, len(header))
		for i, name := range header {
			if i < len(row) {
				f[name] = row[i]
			} else {
				f[name] = ""
			}
		}
		out = append(out, f)
	}
	return out, nil
}
