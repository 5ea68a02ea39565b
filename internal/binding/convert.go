package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateDisplayLayout is the locale display format for dates.
const DateDisplayLayout = "01/02/2006"

var moneyPrinter = message.NewPrinter(language.English)

// StripToInteger removes everything except digits and a leading
// minus from a typed value.
func StripToInteger(display string) string {
	return stripKeeping(display, "")
}

// StripToDecimal additionally keeps the decimal point.
func StripToDecimal(display string) string {
	return stripKeeping(display, ".")
}

func stripKeeping(display string, extra string) string {
	var b strings.Builder
	for i, r := range display {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' && i == 0:
			b.WriteRune(r)
		case strings.ContainsRune(extra, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseNumber parses a typed value as an integer-ish number. An empty
// result after stripping means "no value", not zero.
func ParseNumber(display string) (float64, bool) {
	cleaned := StripToInteger(display)
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDecimal parses a typed value as a decimal number.
func ParseDecimal(display string) (float64, bool) {
	cleaned := StripToDecimal(display)
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ToFixedDecimal renders a number at fixed precision, rounding the
// exact decimal expansion half-up rather than the binary float, so
// 0.615 at precision 2 yields "0.62" and never "0.61".
func ToFixedDecimal(v float64, precision int) string {
	if precision < 0 {
		precision = 0
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	return roundDecimalString(s, precision)
}

func roundDecimalString(s string, precision int) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	for len(fracPart) < precision+1 {
		fracPart += "0"
	}

	keep := fracPart[:precision]
	roundUp := fracPart[precision] >= '5'

	digits := []byte(intPart + keep)
	if roundUp {
		i := len(digits) - 1
		for i >= 0 {
			if digits[i] < '9' {
				digits[i]++
				break
			}
			digits[i] = '0'
			i--
		}
		if i < 0 {
			digits = append([]byte{'1'}, digits...)
		}
	}

	intLen := len(digits) - precision
	out := string(digits[:intLen])
	if precision > 0 {
		out += "." + string(digits[intLen:])
	}
	if neg && strings.Trim(out, "0.") != "" {
		out = "-" + out
	}
	return out
}

// StripMoney removes currency formatting characters (symbol, grouping
// commas, whitespace) from a typed value.
func StripMoney(display string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, display)
	// Accounting-style parentheses mean negative.
	if strings.ContainsRune(display, '(') && !strings.HasPrefix(cleaned, "-") {
		cleaned = "-" + cleaned
	}
	return cleaned
}

// ParseMoney parses a currency-formatted typed value.
func ParseMoney(display string) (float64, bool) {
	cleaned := StripMoney(display)
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, false
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatMoney renders symbol-prefixed, thousands-grouped currency.
// The sign precedes the symbol: FormatMoney(-1234.5, "$", 2) is
// "-$1,234.50".
func FormatMoney(v float64, symbol string, precision int) string {
	abs := v
	sign := ""
	if v < 0 {
		abs = -v
		sign = "-"
	}
	grouped := moneyPrinter.Sprintf(fmt.Sprintf("%%.%df", precision), abs)
	return sign + symbol + grouped
}

// ParseDateDisplay parses a locale MM/DD/YYYY value into a Date at
// local midnight.
func ParseDateDisplay(display string) (time.Time, bool) {
	display = strings.TrimSpace(display)
	if display == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateDisplayLayout, display, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDateDisplay renders a date value as MM/DD/YYYY.
func FormatDateDisplay(t time.Time) string {
	return t.Format(DateDisplayLayout)
}

// CombineDateTime assembles a canonical datetime value from the
// display sub-controls. The user's local wall-clock components are
// written into the UTC fields of the value: the calendar fields read
// back via UTC accessors always equal what the user entered, so the
// wire round trip (plain ISO-8601 of this instant) is exact in every
// host timezone. Callers must reverse this mapping on load and must
// not "fix" it to a local-zone construction.
func CombineDateTime(dateDisplay string, hour12 int, minute int, meridiem string) (time.Time, bool) {
	d, ok := ParseDateDisplay(dateDisplay)
	if !ok {
		return time.Time{}, false
	}
	if hour12 < 1 || hour12 > 12 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	hour := hour12 % 12
	if strings.EqualFold(meridiem, "PM") {
		hour += 12
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.UTC), true
}

// SplitDateTime decomposes a canonical datetime value back into its
// display sub-control values, reading through UTC accessors per the
// CombineDateTime encoding.
func SplitDateTime(t time.Time) (dateDisplay string, hour12 int, minute int, meridiem string) {
	u := t.UTC()
	dateDisplay = fmt.Sprintf("%02d/%02d/%04d", int(u.Month()), u.Day(), u.Year())
	hour := u.Hour()
	meridiem = "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	hour12 = hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	minute = u.Minute()
	return dateDisplay, hour12, minute, meridiem
}

// FormatDateTimeDisplay renders the locale date, 12-hour time, and
// the abbreviated local timezone suffix.
func FormatDateTimeDisplay(t time.Time) string {
	dateDisplay, hour12, minute, meridiem := SplitDateTime(t)
	zone, _ := time.Now().Zone()
	return fmt.Sprintf("%s %d:%02d %s %s", dateDisplay, hour12, minute, meridiem, zone)
}

// WireDateTime serializes a canonical datetime value for the
// persistence collaborator.
func WireDateTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ParseWireDateTime parses a persisted datetime back into the
// canonical representation.
func ParseWireDateTime(s string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

var personPattern = regexp.MustCompile(`^\d+;#`)

// EncodePerson builds the canonical person value "<id>;#<account>".
func EncodePerson(id int, accountName string) string {
	return fmt.Sprintf("%d;#%s", id, accountName)
}

// ValidPerson reports whether a value carries the person encoding.
func ValidPerson(value string) bool {
	return personPattern.MatchString(value)
}

// PersonDisplay returns the name portion of a person value.
func PersonDisplay(value string) string {
	if idx := strings.Index(value, ";#"); idx >= 0 {
		return value[idx+2:]
	}
	return value
}

// PersonID returns the numeric id portion of a person value.
func PersonID(value string) (int, bool) {
	idx := strings.Index(value, ";#")
	if idx < 0 {
		return 0, false
	}
	id, err := strconv.Atoi(value[:idx])
	if err != nil {
		return 0, false
	}
	return id, true
}
