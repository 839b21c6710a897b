// Package codec converts between student records and the four export
// formats: structured text (json), delimited text (csv), plain text (txt)
// and markup text (xml).
//
// Encoding works on the flat types.Record shape. Decoding never builds
// Students itself. It only turns bytes into a sequence of field mappings
// (types.Fields); rebuilding and validating records is the collection's
// job. A structurally broken file is reported as a *ParseError.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Format names one of the supported encodings.
type Format string

const (
	JSON Format = "json"
	CSV  Format = "csv"
	Text Format = "txt"
	XML  Format = "xml"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{JSON, CSV, Text, XML}
}

// MIMEType returns the content type a download sink should advertise.
func (f Format) MIMEType() string {
	switch f {
	case JSON:
		return "application/json"
	case CSV:
		return "text/csv"
	case XML:
		return "application/xml"
	default:
		return "text/plain"
	}
}

// Extension returns the file extension (without dot) for f.
func (f Format) Extension() string {
	return string(f)
}

// ParseFormat maps a user-supplied name onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "txt", "text":
		return Text, nil
	case "xml":
		return XML, nil
	}
	return "", &UnsupportedFormatError{Format: name}
}

// DetectFormat picks the format from a file name's extension.
func DetectFormat(filename string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return "", &UnsupportedFormatError{Format: filename}
	}
	f, err := ParseFormat(ext)
	if err != nil || f != Format(ext) {
		return "", &UnsupportedFormatError{Format: ext}
	}
	return f, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Errors
// ─────────────────────────────────────────────────────────────────────────────

// UnsupportedFormatError is returned for a format name or file extension
// that none of the codecs handle.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Format)
}

// ParseError reports a file whose top-level structure could not be read.
// It aborts the whole import. Problems lists every failure found.
type ParseError struct {
	Format   Format
	Problems []string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Format, strings.Join(e.Problems, "; "))
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseError(f Format, err error, problems ...string) *ParseError {
	if len(problems) == 0 && err != nil {
		problems = []string{err.Error()}
	}
	return &ParseError{Format: f, Problems: problems, Err: err}
}

// ─────────────────────────────────────────────────────────────────────────────
// Dispatch
// ─────────────────────────────────────────────────────────────────────────────

// Encode serializes records in format f.
func Encode(f Format, records []types.Record) ([]byte, error) {
	switch f {
	case JSON:
		return encodeJSON(records)
	case CSV:
		return encodeCSV(records)
	case Text:
		return encodeText(records), nil
	case XML:
		return encodeXML(records), nil
	}
	return nil, &UnsupportedFormatError{Format: string(f)}
}

// Decode parses data in format f into one field mapping per record.
func Decode(f Format, data []byte) ([]types.Fields, error) {
	switch f {
	case JSON:
		return decodeJSON(data)
	case CSV:
		return decodeCSV(data)
	case Text:
		return decodeText(data)
	case XML:
		return decodeXML(data)
	}
	return nil, &UnsupportedFormatError{Format: string(f)}
}
