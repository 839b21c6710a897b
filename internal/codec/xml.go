package codec

import (
	"encoding/xml"
	"strings"

	"github.com/aanand-mishra/student-records/internal/types"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`

// xmlEscaper escapes the five predefined XML entities. A carriage return
// is written as a character reference, since a parser normalizes a
// literal one to a newline.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r", "&#xD;",
)

// encodeXML writes a <students> root with one <record> per item and one
// child element per field, named after the field.
func encodeXML(records []types.Record) []byte {
	var b strings.Builder

	b.WriteString(xmlHeader)
	b.WriteString("\n<students>\n")
	for _, r := range records {
		b.WriteString("  <record>\n")
		for _, p := range r.Pairs() {
			b.WriteString("    <")
			b.WriteString(p.Name)
			b.WriteString(">")
			b.WriteString(xmlEscaper.Replace(p.Value))
			b.WriteString("</")
			b.WriteString(p.Name)
			b.WriteString(">\n")
		}
		b.WriteString("  </record>\n")
	}
	b.WriteString("</students>\n")

	return []byte(b.String())
}

type xmlDocument struct {
	XMLName xml.Name    `xml:"students"`
	Records []xmlRecord `xml:"record"`
}

type xmlRecord struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func decodeXML(data []byte) ([]types.Fields, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, parseError(XML, err)
	}

	out := make([]types.Fields, 0, len(doc.Records))
	for _, rec := range doc.Records {
		f := make(types.Fields, len(rec.Fields))
		for _, field := range rec.Fields {
			f[field.XMLName.Local] = field.Value
		}
		out = append(out, f)
	}
	return out, nil
}
