package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aanand-mishra/student-records/internal/types"
)

func encodeJSON(records []types.Record) ([]byte, error) {
	if records == nil {
		records = []types.Record{}
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}

// decodeJSON accepts a top-level array of objects. Numbers are kept in
// their literal form (UseNumber) so "2024" does not become "2024.000000".
func decodeJSON(data []byte) ([]types.Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, parseError(JSON, err,
			"file must contain an array of records: "+err.Error())
	}

	out := make([]types.Fields, 0, len(raw))
	for _, obj := range raw {
		f := make(types.Fields, len(obj))
		for k, v := range obj {
			f[k] = jsonText(v)
		}
		out = append(out, f)
	}
	return out, nil
}

func jsonText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
