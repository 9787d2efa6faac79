package xlsx

import (
	"fmt"
	"strconv"
	"time"
)

// Cell values are plain Go values: string, float64, bool, time.Time for
// dates, and the three tagged string types below. A type switch over a cell
// recovers the decoded kind.

// TimeOfDay is a time-of-day cell rendered as HH:MM:SS.
type TimeOfDay string

// Percent is a percentage cell rendered with four decimal digits and a
// trailing percent sign.
type Percent string

// ErrorCode is the symbolic form of an Excel error cell.
type ErrorCode string

const (
	ErrCodeBadName         ErrorCode = "bad-name"
	ErrCodeDivByZero       ErrorCode = "div-by-zero"
	ErrCodeInvalidRef      ErrorCode = "invalid-reference"
	ErrCodeOverflow        ErrorCode = "overflow"
	ErrCodeNotApplicable   ErrorCode = "not-applicable"
	ErrCodeInvalidValue    ErrorCode = "invalid-value"
	ErrCodeNull            ErrorCode = "null"
	ErrCodeMultipleResults ErrorCode = "multiple-results"
	ErrCodeUnknown         ErrorCode = "unknown-error"
)

var cellErrorCodes = map[string]ErrorCode{
	"#NAME?":  ErrCodeBadName,
	"#DIV/0!": ErrCodeDivByZero,
	"#REF!":   ErrCodeInvalidRef,
	"#NUM!":   ErrCodeOverflow,
	"#N/A":    ErrCodeNotApplicable,
	"#VALUE!": ErrCodeInvalidValue,
	"#NULL!":  ErrCodeNull,
	"#SPILL!": ErrCodeMultipleResults,
}

func cellErrorCode(token string) ErrorCode {
	if code, ok := cellErrorCodes[token]; ok {
		return code
	}
	return ErrCodeUnknown
}

// Row is one decoded worksheet row. Num is the 1-based row position as
// declared in the source, or inferred sequentially when absent. Cells is
// sparse: only cells that appeared in the XML have keys, normally column
// letters, or header names after rekeying.
type Row struct {
	Num   int
	Cells map[string]any
}

// DisplayString renders a cell value the way it would be shown in a table.
func DisplayString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	case TimeOfDay:
		return string(t)
	case Percent:
		return string(t)
	case ErrorCode:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
