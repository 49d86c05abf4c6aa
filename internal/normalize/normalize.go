// Package normalize is the single point of type coercion for every field
// the importers assign. Raw values arrive from three untrusted sources
// (legacy SQL rows, spreadsheet cells, remote API objects) with inconsistent
// types, so each conversion takes any value and degrades to a safe default
// instead of returning an error.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nonPrintable  = regexp.MustCompile(`[^\x20-\x7E]+`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	nonHandle     = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun     = regexp.MustCompile(`-+`)
)

// Text coerces any value to a display string: non-printable and non-ASCII
// bytes removed, whitespace runs collapsed to single spaces, trimmed.
// Integer-valued numbers render without a decimal point. Nil and empty
// input yield "" rather than a null.
func Text(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return strconv.FormatInt(int64(v), 10)
		}
	case float32:
		return Text(float64(v))
	}

	text := fmt.Sprintf("%v", value)
	if text == "" {
		return ""
	}
	text = nonPrintable.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Float parses a value to a float rounded to 2 decimals, banker's
// (half-even) rounding. Any parse failure or empty input yields 0.
func Float(value interface{}) float64 {
	text := Text(value)
	if text == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return decimal.NewFromFloat(parsed).RoundBank(2).InexactFloat64()
}

// Int is Float truncated toward zero.
func Int(value interface{}) int {
	return int(Float(value))
}

// IsWhole reports whether a normalized float carries no fractional part.
// Callers that need the original's integer rendering branch on this instead
// of relying on a mixed return type.
func IsWhole(f float64) bool {
	return f == math.Trunc(f)
}

// Date parses the fixed MM/DD/YYYY feed format. Any failure yields nil.
func Date(value interface{}) *time.Time {
	text := Text(value)
	if text == "" {
		return nil
	}
	parsed, err := time.Parse("01/02/2006", text)
	if err != nil {
		return nil
	}
	return &parsed
}

// Handle slugs a title for the storefront URL: lowercase, spaces to
// hyphens, everything outside [a-z0-9-] stripped (accented letters are
// dropped, not transliterated), hyphen runs collapsed, edges trimmed.
func Handle(value interface{}) string {
	text := Text(value)
	if text == "" {
		return ""
	}
	handle := strings.ToLower(text)
	handle = strings.ReplaceAll(handle, " ", "-")
	handle = nonHandle.ReplaceAllString(handle, "")
	handle = hyphenRun.ReplaceAllString(handle, "-")
	return strings.Trim(handle, "-")
}
