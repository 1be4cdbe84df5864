package formula

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateSystem selects which epoch serial date 1 refers to. Grounded on
// original_source/crates/formula-engine/src/coercion/datetime.rs: both
// systems are selectable per-workbook. The 1900 system counts days from
// Dec 30 1899 on the ordinary Gregorian calendar and does not reproduce
// the "1900 is a leap year" bug: there is no Feb 29 1900, so serials 1
// through 60 land one day earlier than in Excel, and serials from 61
// (Mar 1 1900) onward agree with Excel.
type DateSystem uint8

const (
	// DateSystem1900 treats serial 1 as Dec 31 1899, serial 60 as Feb 28
	// 1900 and serial 61 as Mar 1 1900.
	DateSystem1900 DateSystem = iota
	// DateSystem1904 treats serial 0 as Jan 1 1904 (the classic Mac epoch).
	DateSystem1904
)

const (
	secondsPerDay = 24 * 60 * 60
)

var epoch1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
var epoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// SerialToTime converts an Excel serial date number to a UTC time.Time
// under the given date system.
func SerialToTime(serial float64, system DateSystem) time.Time {
	var base time.Time
	switch system {
	case DateSystem1904:
		base = epoch1904
	default:
		base = epoch1900
	}
	days := int64(serial)
	frac := serial - float64(days)
	t := base.AddDate(0, 0, int(days))
	return t.Add(time.Duration(frac*secondsPerDay) * time.Second)
}

// TimeToSerial converts a UTC time.Time to an Excel serial date number
// under the given date system.
func TimeToSerial(t time.Time, system DateSystem) float64 {
	var base time.Time
	switch system {
	case DateSystem1904:
		base = epoch1904
	default:
		base = epoch1900
	}
	d := t.Sub(base)
	return d.Hours() / 24
}

// ParseLocaleDate parses a locale-formatted date string (using the
// locale's DateSeparator) into a serial date number. Supports the common
// MDY and YMD orderings; ambiguous two-field inputs are rejected with
// #VALUE! rather than guessed.
func ParseLocaleDate(s string, loc *Locale, system DateSystem) (float64, error) {
	sep := string(loc.Config.DateSeparator)
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != 3 {
		return 0, NewSpreadsheetError(ErrorCodeValue, "")
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, NewSpreadsheetError(ErrorCodeValue, "")
		}
		nums[i] = n
	}
	var year, month, day int
	if nums[0] > 31 {
		// YMD
		year, month, day = nums[0], nums[1], nums[2]
	} else {
		// MDY (default for locales without an explicit YMD convention)
		month, day, year = nums[0], nums[1], nums[2]
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, NewSpreadsheetError(ErrorCodeValue, "")
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return TimeToSerial(t, system), nil
}

// FormatLocaleDate renders a serial date number back to a locale-formatted
// MM<sep>DD<sep>YYYY string.
func FormatLocaleDate(serial float64, loc *Locale, system DateSystem) string {
	t := SerialToTime(serial, system)
	sep := string(loc.Config.DateSeparator)
	return fmt.Sprintf("%02d%s%02d%s%04d", int(t.Month()), sep, t.Day(), sep, t.Year())
}
