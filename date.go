package xlsx

// Serial conversion logic originally adapted from https://github.com/tealeg/xlsx

import (
	"fmt"
	"time"
)

const (
	nanosInADay   = float64((24 * time.Hour) / time.Nanosecond)
	secondsInADay = 24 * 60 * 60
)

// The 1900 epoch is 1899-12-30, not 1899-12-31: the two-day offset absorbs
// the Lotus leap-year bug baked into the Excel serial system and must stay
// exactly as is for bit compatibility with files produced by Excel.
var (
	excel1900Epoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	excel1904Epoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)
)

func timeFromExcelTime(excelTime float64, date1904 bool) time.Time {
	wholeDaysPart := int(excelTime)
	durationPart := time.Duration(nanosInADay * (excelTime - float64(wholeDaysPart)))
	if date1904 {
		return excel1904Epoch.AddDate(0, 0, wholeDaysPart).Add(durationPart)
	}
	return excel1900Epoch.AddDate(0, 0, wholeDaysPart).Add(durationPart)
}

// excelTimeFromTime is the write-path inverse: days (plus day fraction)
// between the 1900 epoch and t.
func excelTimeFromTime(t time.Time) float64 {
	return t.UTC().Sub(excel1900Epoch).Seconds() / secondsInADay
}

// timeOfDayString renders a day-fraction serial as HH:MM:SS in UTC.
func timeOfDayString(serial float64) string {
	total := int(serial*secondsInADay + 0.5)
	total %= secondsInADay
	if total < 0 {
		total += secondsInADay
	}
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}

// percentString renders a fraction serial as a percentage with four decimals.
func percentString(serial float64) string {
	return fmt.Sprintf("%.4f%%", serial*100)
}
