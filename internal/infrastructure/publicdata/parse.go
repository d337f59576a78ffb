package publicdata

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ToLooseNumber parses numbers that upstream encodes either as JSON numbers
// or as strings with thousands separators and stray whitespace.
func ToLooseNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, finite(n)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil && finite(f)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r == ',' || unicode.IsSpace(r) {
				return -1
			}
			return r
		}, n)
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || !finite(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ToYear extracts a four-digit year from a number (e.g. 1998 or 19980512)
// or from a digit-bearing string (e.g. "1998-05-12").  String inputs outside
// [1900, 2100] are rejected.
func ToYear(v interface{}) (int, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	}

	switch n := v.(type) {
	case float64:
		if !finite(n) {
			return 0, false
		}
		asInt := math.Trunc(n)
		if asInt >= 1900 && asInt <= 2100 {
			return int(asInt), true
		}
		digits := strconv.FormatFloat(asInt, 'f', -1, 64)
		if len(digits) < 4 {
			return 0, false
		}
		year, err := strconv.Atoi(digits[:4])
		if err != nil {
			return 0, false
		}
		return year, true
	case string:
		var b strings.Builder
		for _, r := range n {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		digits := b.String()
		if len(digits) < 4 {
			return 0, false
		}
		year, _ := strconv.Atoi(digits[:4])
		if year < 1900 || year > 2100 {
			return 0, false
		}
		return year, true
	default:
		return 0, false
	}
}

// Average returns the two-decimal mean, or false for empty input.
func Average(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return Round2(sum / float64(len(values))), true
}

// Median returns the middle value, averaging (and rounding) the two middle
// values for even-length input.  False for empty input.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return Round2((sorted[mid-1] + sorted[mid]) / 2), true
}

// PickByKeys returns the value of the first key present in item, even when
// that value is null or unparseable.
func PickByKeys(item map[string]interface{}, keys []string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := item[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

//Personal.AI order the ending
