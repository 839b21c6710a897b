package codec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	blockSeparator = regexp.MustCompile(`\n[ \t]*\n`)
	recordHeader   = regexp.MustCompile(`^Record \d+:$`)

	// Values stay on one line: backslash, newline and carriage return are
	// written as \\, \n and \r.
	textEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
)

// encodeText renders one block per record:
//
//	Record 1:
//	  id: 20241010001
//	  name: Budi Santoso
//
// Blocks are separated by a blank line. Multi-line values are escaped
// onto a single line.
func encodeText(records []types.Record) []byte {
	blocks := make([]string, 0, len(records))
	for i, r := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "Record %d:", i+1)
		for _, p := range r.Pairs() {
			fmt.Fprintf(&b, "\n  %s: %s", p.Name, textEscaper.Replace(p.Value))
		}
		blocks = append(blocks, b.String())
	}
	return []byte(strings.Join(blocks, "\n\n"))
}

// decodeText splits on blank lines and reads "field: value" lines from
// each block. The field name ends at the first colon, so values may
// contain colons (timestamps do). Any line that is neither a record
// header nor a field line makes the file unreadable.
func decodeText(data []byte) ([]types.Fields, error) {
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	if strings.TrimSpace(content) == "" {
		return []types.Fields{}, nil
	}

	var (
		out      []types.Fields
		problems []string
	)

	for bi, block := range blockSeparator.Split(content, -1) {
		if strings.TrimSpace(block) == "" {
			continue
		}

		f := types.Fields{}
		for li, line := range strings.Split(block, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || recordHeader.MatchString(trimmed) {
				continue
			}
			name, value, ok := strings.Cut(trimmed, ":")
			name = strings.TrimSpace(name)
			if !ok || name == "" {
				problems = append(problems,
					fmt.Sprintf("block %d, line %d: expected \"field: value\", got %q", bi+1, li+1, trimmed))
				continue
			}
			f[name] = unescapeText(strings.TrimSpace(value))
		}
		out = append(out, f)
	}

	if len(problems) > 0 {
		return nil, parseError(Text, nil, problems...)
	}
	return out, nil
}

// unescapeText reverses textEscaper. A backslash before any other
// character is kept as is, so hand-written files with a stray backslash
// still import.
func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(s[i])
			continue
		}
		i++
	}
	return b.String()
}
