package scriptgen

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// jsString renders s as a double-quoted JavaScript string literal. JSON
// string syntax is a subset of JavaScript's, and the encoder escapes U+2028
// and U+2029 which JavaScript treats as line terminators.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// jsValue renders v as an indented JavaScript object literal, continuing
// lines at the given indent.
func jsValue(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(indent, "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// hasTextSelector builds a Playwright selector matching tag by visible text.
func hasTextSelector(tag, text string) string {
	return tag + ":has-text(" + jsString(text) + ")"
}

// commentText makes s safe for a single-line // comment.
func commentText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
