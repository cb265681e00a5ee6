package provider

import (
	"encoding/json"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// FillTemplate substitutes {key} placeholders from vars. Placeholders with
// no matching key are left as written.
func FillTemplate(tpl string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(tpl, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

var (
	jsonFencePattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	bareFencePattern = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// decodeFailedMarker is the error value carried by the Decode sentinel.
const decodeFailedMarker = "decode failed"

// Decode extracts a JSON value from a vendor reply. A ```json fence is tried
// first, then a bare fence, then the whole text. When nothing parses the
// result is map{"error": "decode failed", "raw": text}.
func Decode(text string) any {
	candidate := text
	if m := jsonFencePattern.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := bareFencePattern.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}

	var v any
	if err := json.Unmarshal([]byte(strings.TrimSpace(candidate)), &v); err != nil {
		return map[string]any{"error": decodeFailedMarker, "raw": text}
	}
	return v
}

// DecodeFailed reports whether v is the sentinel returned by Decode.
func DecodeFailed(v any) bool {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 2 {
		return false
	}
	marker, _ := m["error"].(string)
	_, hasRaw := m["raw"].(string)
	return marker == decodeFailedMarker && hasRaw
}

// RawText returns the reply text carried by a Decode sentinel.
func RawText(v any) string {
	if !DecodeFailed(v) {
		return ""
	}
	return v.(map[string]any)["raw"].(string)
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(data)
}
