package merge

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one test declaration found in a script.
type Record struct {
	ID    string
	Title string
	// Code is the declaration from "test(" through the closing ")" and an
	// optional ";".
	Code string
	// Start and End are byte offsets of Code in the scanned text.
	Start int
	End   int
}

// Extract finds every top-level test("title", ...) declaration in text.
// String literals, template literals and comments are skipped, so braces or
// "test(" inside them are never mistaken for code. test.describe and other
// member calls are not declarations.
func Extract(text string) ([]Record, error) {
	var records []Record
	i := 0
	for i < len(text) {
		if next, ok := skipNonCode(text, i); ok {
			i = next
			continue
		}

		if isDeclarationAt(text, i) {
			rec, ok, err := readDeclaration(text, i)
			if err != nil {
				return nil, err
			}
			if ok {
				records = append(records, rec)
				i = rec.End
				continue
			}
		}
		i++
	}
	return records, nil
}

// skipNonCode returns the index after a string, template literal or comment
// beginning at i.
func skipNonCode(text string, i int) (int, bool) {
	switch text[i] {
	case '"', '\'':
		end, _ := skipQuoted(text, i)
		return end, true
	case '`':
		end, _ := skipTemplate(text, i)
		return end, true
	case '/':
		if i+1 < len(text) {
			switch text[i+1] {
			case '/':
				if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
					return i + nl + 1, true
				}
				return len(text), true
			case '*':
				if end := strings.Index(text[i+2:], "*/"); end >= 0 {
					return i + 2 + end + 2, true
				}
				return len(text), true
			}
		}
	}
	return i, false
}

// skipQuoted returns the index after the quoted string at i and whether it
// was terminated.
func skipQuoted(text string, i int) (int, bool) {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		case '\n':
			return j, false
		}
	}
	return len(text), false
}

// skipTemplate returns the index after the template literal at i, stepping
// over ${...} substitutions.
func skipTemplate(text string, i int) (int, bool) {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '`':
			return j + 1, true
		case '$':
			if j+1 < len(text) && text[j+1] == '{' {
				end, ok := matchBrackets(text, j+1)
				if !ok {
					return len(text), false
				}
				j = end - 1
			}
		}
	}
	return len(text), false
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// isDeclarationAt reports whether "test" followed by "(" starts at i as a
// standalone identifier.
func isDeclarationAt(text string, i int) bool {
	if !strings.HasPrefix(text[i:], "test") {
		return false
	}
	if i > 0 && (isIdentByte(text[i-1]) || text[i-1] == '.') {
		return false
	}
	j := skipSpace(text, i+4)
	return j < len(text) && text[j] == '('
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

// skipSpaceAndComments advances past whitespace and comments.
func skipSpaceAndComments(text string, i int) int {
	for {
		i = skipSpace(text, i)
		if i+1 < len(text) && text[i] == '/' && (text[i+1] == '/' || text[i+1] == '*') {
			next, _ := skipNonCode(text, i)
			i = next
			continue
		}
		return i
	}
}

// readDeclaration parses test(<literal>, ...) starting at i. It returns
// ok=false when the first argument is not a string literal, and an error
// when the call is never closed or has no function body.
func readDeclaration(text string, start int) (Record, bool, error) {
	open := strings.IndexByte(text[start:], '(') + start

	titleStart := skipSpaceAndComments(text, open+1)
	if titleStart >= len(text) {
		return Record{}, false, nil
	}
	var (
		titleEnd int
		closed   bool
	)
	switch text[titleStart] {
	case '"', '\'':
		titleEnd, closed = skipQuoted(text, titleStart)
	case '`':
		titleEnd, closed = skipTemplate(text, titleStart)
	default:
		return Record{}, false, nil
	}
	if !closed {
		return Record{}, false, fmt.Errorf("unterminated title at offset %d", titleStart)
	}
	title := unquote(text[titleStart:titleEnd])

	end, hasBody, ok := scanCall(text, open)
	if !ok {
		return Record{}, false, fmt.Errorf("test %q at offset %d has no balanced body", title, start)
	}
	if !hasBody {
		return Record{}, false, fmt.Errorf("test %q at offset %d has no function body", title, start)
	}

	if semi := skipSpace(text, end); semi < len(text) && text[semi] == ';' && !strings.ContainsRune(text[end:semi], '\n') {
		end = semi + 1
	}

	return Record{
		ID:    idFromTitle(title),
		Title: title,
		Code:  text[start:end],
		Start: start,
		End:   end,
	}, true, nil
}

// scanCall matches the parenthesis at open and reports the index after its
// closing ")" and whether a {...} block appeared directly inside the call.
func scanCall(text string, open int) (end int, hasBody bool, ok bool) {
	var stack []byte
	for i := open; i < len(text); i++ {
		if next, skipped := skipNonCode(text, i); skipped {
			i = next - 1
			continue
		}
		switch c := text[i]; c {
		case '(', '[', '{':
			if c == '{' && len(stack) == 1 {
				hasBody = true
			}
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != opener(c) {
				return 0, false, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, hasBody, true
			}
		}
	}
	return 0, false, false
}

// matchBrackets returns the index after the bracket that closes the one at
// open.
func matchBrackets(text string, open int) (int, bool) {
	var stack []byte
	for i := open; i < len(text); i++ {
		if next, skipped := skipNonCode(text, i); skipped {
			i = next - 1
			continue
		}
		switch c := text[i]; c {
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != opener(c) {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

func opener(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

// unquote decodes a JavaScript string literal including its quotes.
func unquote(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	if lit[0] == '"' {
		var s string
		if err := json.Unmarshal([]byte(lit), &s); err == nil {
			return s
		}
	}

	body := lit[1 : len(lit)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			if i+4 < len(body) {
				if r, err := strconv.ParseUint(body[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += 4
					continue
				}
			}
			b.WriteByte('u')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

// idFromTitle returns the part of title before the first " - ".
func idFromTitle(title string) string {
	if idx := strings.Index(title, " - "); idx >= 0 {
		return strings.TrimSpace(title[:idx])
	}
	return strings.TrimSpace(title)
}
