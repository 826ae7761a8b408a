package extract

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// maxCSVRows caps how many data rows a CSV contributes, so a huge export
// does not balloon into thousands of chunks.
const maxCSVRows = 1000

// jsonToText flattens JSON into indented "key: value" lines. Invalid JSON
// falls back to the raw content rather than failing the document.
func jsonToText(raw []byte) string {
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return string(raw)
	}

	var b strings.Builder
	writeJSONValue(&b, data, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeJSONValue(b *strings.Builder, data any, indent int) {
	prefix := strings.Repeat("  ", indent)

	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys) // deterministic output for identical input
		for _, k := range keys {
			switch child := v[k].(type) {
			case map[string]any, []any:
				fmt.Fprintf(b, "%s%s:\n", prefix, k)
				writeJSONValue(b, child, indent+1)
			default:
				fmt.Fprintf(b, "%s%s: %v\n", prefix, k, child)
			}
		}
	case []any:
		for i, item := range v {
			switch item.(type) {
			case map[string]any, []any:
				fmt.Fprintf(b, "%s[%d]:\n", prefix, i)
				writeJSONValue(b, item, indent+1)
			default:
				fmt.Fprintf(b, "%s[%d]: %v\n", prefix, i, item)
			}
		}
	default:
		fmt.Fprintf(b, "%s%v\n", prefix, v)
	}
}

// xmlToText flattens XML elements into indented "tag: text" lines.
// Malformed XML falls back to the raw content.
func xmlToText(raw []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	var b strings.Builder
	depth := 0
	wrote := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return string(raw)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			prefix := strings.Repeat("  ", depth)
			tag := t.Name.Local
			if len(t.Attr) > 0 {
				attrs := make([]string, len(t.Attr))
				for i, a := range t.Attr {
					attrs[i] = fmt.Sprintf("%s=%s", a.Name.Local, a.Value)
				}
				tag += " (" + strings.Join(attrs, ", ") + ")"
			}
			fmt.Fprintf(&b, "%s%s:\n", prefix, tag)
			depth++
			wrote = true
		case xml.EndElement:
			depth--
		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text != "" {
				fmt.Fprintf(&b, "%s%s\n", strings.Repeat("  ", depth), text)
			}
		}
	}

	if !wrote {
		return string(raw)
	}
	return strings.TrimRight(b.String(), "\n")
}

// csvToText renders the header line plus up to maxCSVRows data rows.
func csvToText(raw []byte) string {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1

	var lines []string

	header, err := reader.Read()
	if err != nil {
		return string(raw)
	}
	lines = append(lines, "CSV Headers: "+strings.Join(header, ", "), "")

	rows := 0
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		if len(record) == 0 {
			continue
		}
		rows++
		lines = append(lines, fmt.Sprintf("Row %d: %s", rows, strings.Join(record, ", ")))
		if rows >= maxCSVRows {
			lines = append(lines, "", fmt.Sprintf("... (truncated after %d rows)", maxCSVRows))
			break
		}
	}

	return strings.Join(lines, "\n")
}

// htmlToText strips markup and converts the body to markdown, which keeps
// headings and lists as chunkable boundaries.
func htmlToText(raw []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript").Remove()

	converter := md.NewConverter("", true, nil)
	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	text := converter.Convert(body)
	return strings.TrimSpace(text), nil
}
