package xlsx

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// maxRangeRow bounds open-ended ranges such as "A:C".
const maxRangeRow = 10000

// ColumnNumber converts column letters to a 1-based column number
// (A=1, Z=26, AA=27). Trailing digits, as in a full cell reference
// like "AB33", are ignored.
func ColumnNumber(letters string) int {
	result := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			break
		}
		result = result*26 + int(c-'A') + 1
	}
	return result
}

// ColumnName converts a 1-based column number to column letters. It is the
// exact inverse of ColumnNumber for every n >= 1: bijective base 26, the
// value is decremented before each digit so there is no zero digit.
func ColumnName(n int) string {
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// Range is an inclusive rectangle of cells.
type Range struct {
	StartColumn string
	EndColumn   string
	StartRow    int
	EndRow      int
}

var rangeRe = regexp.MustCompile(`^([A-Z]*)([0-9]*)(:([A-Z]*)([0-9]*))?$`)

// ParseRange parses a range expression: "A1", "A1:C5", "A:C" or "1:5".
// A missing end column defaults to the start column and a missing start row
// to 1. When the expression is column shaped ("B", "A:C", "A1:C") the end
// row defaults to a large cap meaning "through the end of the data"; a bare
// cell like "B3" stays a single cell.
func ParseRange(expr string) (Range, error) {
	m := rangeRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(expr)))
	if m == nil || (m[1] == "" && m[2] == "") {
		return Range{}, fmt.Errorf("can not parse range %q: %w", expr, ErrInvalidArgument)
	}

	r := Range{StartColumn: m[1], StartRow: 1}
	if r.StartColumn == "" {
		r.StartColumn = "A"
	}
	if m[2] != "" {
		r.StartRow, _ = strconv.Atoi(m[2])
	}

	if m[3] == "" {
		// No colon. A bare column selects whole rows, a bare cell just itself.
		r.EndColumn = r.StartColumn
		if m[2] == "" {
			r.EndRow = maxRangeRow
		} else {
			r.EndRow = r.StartRow
		}
		return r, nil
	}

	r.EndColumn = m[4]
	if r.EndColumn == "" {
		r.EndColumn = r.StartColumn
	}
	switch {
	case m[5] != "":
		r.EndRow, _ = strconv.Atoi(m[5])
	case m[4] != "":
		r.EndRow = maxRangeRow
	default:
		r.EndRow = r.StartRow
	}
	return r, nil
}

// SelectRange filters rows to those whose row number falls inside the range
// and projects each retained row to the inclusive column span. Keys that are
// not column references (for example after header rekeying) are dropped.
func SelectRange(rows []Row, expr string) ([]Row, error) {
	rng, err := ParseRange(expr)
	if err != nil {
		return nil, err
	}

	startCol := ColumnNumber(rng.StartColumn)
	endCol := ColumnNumber(rng.EndColumn)

	var result []Row
	for _, row := range rows {
		if row.Num < rng.StartRow || row.Num > rng.EndRow {
			continue
		}
		projected := Row{Num: row.Num, Cells: make(map[string]any)}
		for key, value := range row.Cells {
			if !isColumnRef(key) {
				continue
			}
			if n := ColumnNumber(key); n >= startCol && n <= endCol {
				projected.Cells[key] = value
			}
		}
		result = append(result, projected)
	}
	return result, nil
}

func isColumnRef(s string) bool {
	if len(s) == 0 || len(s) > 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Columns returns the row's keys, column references first in column order,
// any rekeyed headers after them alphabetically.
func (r Row) Columns() []string {
	keys := make([]string, 0, len(r.Cells))
	for key := range r.Cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := isColumnRef(keys[i]), isColumnRef(keys[j])
		if ci && cj {
			return ColumnNumber(keys[i]) < ColumnNumber(keys[j])
		}
		if ci != cj {
			return ci
		}
		return keys[i] < keys[j]
	})
	return keys
}
