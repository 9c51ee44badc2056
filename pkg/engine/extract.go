package engine

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// minExtractableLen guards against trivially unparseable input.
const minExtractableLen = 10

// ExtractJSON locates the most plausible JSON value inside raw model output.
// It tolerates markdown code fences, leading/trailing prose, and mildly
// damaged JSON (repaired as a last resort). On success it returns the parsed
// value and the canonical JSON text it was parsed from. Extraction failure is
// reported through ok=false, never through a panic or error.
func ExtractJSON(raw string) (value any, doc string, ok bool) {
	stripped := stripCodeFences(strings.TrimSpace(raw))
	if len(stripped) < minExtractableLen {
		return value, doc, false
	}

	// Direct parse of the fence-stripped text.
	if v, parseOK := tryParse(stripped); parseOK {
		return v, stripped, true
	}

	// Slice between the first '{' and the last '}' and retry.
	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start >= 0 && end > start {
		slice := stripped[start : end+1]
		if v, parseOK := tryParse(slice); parseOK {
			return v, slice, true
		}

		// Last resort: mechanical repair of the brace-bounded slice. Input
		// with no closing brace never reaches this point, so truncated
		// output still fails extraction instead of being invented.
		repaired, err := jsonrepair.JSONRepair(slice)
		if err == nil {
			if v, parseOK := tryParse(repaired); parseOK {
				return v, repaired, true
			}
		}
	}

	return value, doc, false
}

// tryParse attempts a strict JSON parse of text into a generic value.
// Scalars are rejected: the engine only deals in objects and arrays.
func tryParse(text string) (value any, ok bool) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return value, false
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, true
	}
	return value, false
}

// stripCodeFences removes a single pair of leading/trailing triple-backtick
// fences, optionally tagged with a language hint after the opening fence.
func stripCodeFences(text string) (cleaned string) {
	cleaned = text
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	rest := cleaned[3:]
	// Drop the language hint line (e.g. "json") if present.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		first := strings.TrimSpace(rest[:nl])
		if first == "" || isLanguageHint(first) {
			rest = rest[nl+1:]
		}
	}

	rest = strings.TrimSpace(rest)
	if strings.HasSuffix(rest, "```") {
		rest = strings.TrimSpace(rest[:len(rest)-3])
	}

	cleaned = rest
	return cleaned
}

// isLanguageHint reports whether s looks like a fence language tag.
func isLanguageHint(s string) (ok bool) {
	if len(s) > 20 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	ok = true
	return ok
}
