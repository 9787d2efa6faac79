package xlsx

// formatClass is what the decoder needs to know about a number format:
// whether a numeric cell holds a date, a time of day, a percentage or a
// plain number.
type formatClass int

const (
	formatPlain formatClass = iota
	formatDate
	formatTime
	formatPercent
)

// builtinFormatClasses covers Excel's reserved numFmtId range plus the
// undocumented but commonly observed ids above 163 that some producers emit
// without a matching numFmt declaration.
var builtinFormatClasses = map[int]formatClass{
	// percentages
	9:  formatPercent,
	10: formatPercent,
	// dates
	14: formatDate, 15: formatDate, 16: formatDate, 17: formatDate,
	22: formatDate, 30: formatDate, 34: formatDate,
	51: formatDate, 52: formatDate, 53: formatDate, 54: formatDate,
	55: formatDate, 56: formatDate, 57: formatDate, 58: formatDate,
	// times
	18: formatTime, 19: formatTime, 20: formatTime, 21: formatTime,
	45: formatTime, 46: formatTime, 47: formatTime,
	164: formatTime,
}

func init() {
	for id := 165; id <= 187; id++ {
		builtinFormatClasses[id] = formatDate
	}
}

// classifyFormatCode classifies a literal format code by token inspection.
// Quoted literals, escaped characters and [..] annotations that are not
// elapsed-time tokens do not count. A percent sign wins outright; otherwise
// year/day tokens mean a date, hour/second tokens a time, and a bare month
// token (no clock part) a date.
func classifyFormatCode(code string) formatClass {
	hasDate := false
	hasTime := false
	hasMonth := false

	runes := []rune(code)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\\', '_':
			if i+1 < len(runes) {
				i++
			}
		case '"':
			end, err := skipToRune(runes[i:], '"')
			if err != nil {
				return formatPlain
			}
			i += end
		case '[':
			end, err := skipToRune(runes[i:], ']')
			if err != nil {
				return formatPlain
			}
			if isElapsedToken(runes[i+1 : i+end]) {
				hasTime = true
			}
			i += end
		case '%':
			return formatPercent
		case 'y', 'Y', 'd', 'D':
			hasDate = true
		case 'h', 'H', 's', 'S':
			hasTime = true
		case 'm', 'M':
			hasMonth = true
		}
	}

	switch {
	case hasDate:
		return formatDate
	case hasTime:
		return formatTime
	case hasMonth:
		return formatDate
	default:
		return formatPlain
	}
}

// isElapsedToken reports whether a bracketed section is an elapsed-time
// token like [h], [mm] or [ss], as opposed to a color or condition.
func isElapsedToken(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		switch r {
		case 'h', 'H', 'm', 'M', 's', 'S':
		default:
			return false
		}
	}
	return true
}

func skipToRune(runes []rune, r rune) (int, error) {
	for i := 1; i < len(runes); i++ {
		if runes[i] == r {
			return i, nil
		}
	}
	return -1, ErrMalformed
}
