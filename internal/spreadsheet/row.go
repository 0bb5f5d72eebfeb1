package spreadsheet

import "strings"

// Row is one imported record, addressable by column header. Missing columns
// read as the empty string so a sparse upload still imports.
type Row struct {
	values map[string]string
}

func NewRow(headers, cells []string) Row {
	values := make(map[string]string, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if i < len(cells) {
			values[key] = strings.TrimSpace(cells[i])
		} else {
			values[key] = ""
		}
	}
	return Row{values: values}
}

// Get returns the cell under the given header, or "" when absent.
func (r Row) Get(header string) string {
	return r.values[normalizeHeader(header)]
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}
