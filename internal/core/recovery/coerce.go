package recovery

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/MagicMike0112/Project-Study-BSH/internal/core/domain"
)

// CoerceFloat accepts JSON numbers and numeric strings such as "1,5" or
// "2 pcs" and rejects NaN and infinities.
func CoerceFloat(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, ok := parseLeadingNumber(t)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceInt rounds numeric values to the nearest integer.
func CoerceInt(v any) (int, bool) {
	f, ok := CoerceFloat(v)
	if !ok || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func CoerceString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64, json.Number, int:
		f, ok := CoerceFloat(t)
		if !ok {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', -1, 64), true
	default:
		return "", false
	}
}

// CoerceEnum lowercases a string value and returns it when it is one of
// allowed, or when an alias maps it to one.
func CoerceEnum(v any, allowed []string, aliases map[string]string) (string, bool) {
	s, ok := CoerceString(v)
	if !ok {
		return "", false
	}
	s = strings.ToLower(s)
	if mapped, ok := aliases[s]; ok {
		s = mapped
	}
	for _, a := range allowed {
		if s == a {
			return s, true
		}
	}
	return "", false
}

func CoerceDate(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' || (end == 0 && (c == '-' || c == '+')) {
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
