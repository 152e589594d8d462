package stringutils

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type StringNumber interface {
	~int | int8 | int16 | int32 | int64 | uint | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

func ToString[T StringNumber](v T) string {

	switch a := any(v).(type) {
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(int64(v), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(uint64(v), 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", a)
	}
}

// Truncate cuts s to at most n characters and marks the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// Slugify lowercases title and keeps letters, digits, '-' and '_', joining words with '-'.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			b.WriteRune('-')
		}
	}

	slug := b.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}

	return strings.Trim(slug, "-")
}
