package recovery

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"
)

var codeFencePattern = regexp.MustCompile("```[A-Za-z0-9_-]*")

// Sanitize removes byte-order marks and Markdown code fences, replaces
// control characters with spaces and collapses whitespace. Runs of spaces
// inside JSON string literals are kept so valid JSON is a fixed point.
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\ufeff", "")
	text = codeFencePattern.ReplaceAllString(text, " ")

	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	pendingSpace := false
	for _, r := range text {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			if unicode.IsControl(r) {
				r = ' '
			}
			b.WriteRune(r)
			continue
		}
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		if r == '"' {
			inString = true
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// ExtractObject returns the substring from the first '{' to the last '}',
// or an empty string when there is no such span.
func ExtractObject(text string) string {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// Detrail removes commas that directly precede a closing brace or bracket,
// ignoring whitespace between them. String literals are left untouched.
func Detrail(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			j := i + 1
			for j < len(text) && isJSONSpace(text[j]) {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// Unquote strips one layer of surrounding quotes. A valid JSON string
// literal is decoded so escaped inner quotes come back.
func Unquote(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < 2 {
		return "", false
	}
	first, last := text[0], text[len(text)-1]
	if first != last || (first != '"' && first != '\'') {
		return "", false
	}
	if first == '"' {
		var decoded string
		if err := json.Unmarshal([]byte(text), &decoded); err == nil {
			return decoded, true
		}
	}
	return text[1 : len(text)-1], true
}

// Sample bounds text for logs and error payloads.
func Sample(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
