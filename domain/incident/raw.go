package incident

import "strings"

// RawTable is the untyped tabular form every source produces before
// cleaning. Rows may be ragged; missing trailing cells read as "".
type RawTable struct {
	Source  string
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named header, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// MissingColumns returns the required headers absent from the table.
func (t *RawTable) MissingColumns(required []string) []string {
	var missing []string
	for _, col := range required {
		if t.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	return missing
}

// Cell returns the trimmed cell at row r, column c, or "" when the row is
// short.
func (t *RawTable) Cell(r, c int) string {
	row := t.Rows[r]
	if c < 0 || c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}
