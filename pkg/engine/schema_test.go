package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema covers one field of every spec type.
func testSchema() (schema *Object) {
	schema = &Object{Fields: []Field{
		{Name: "weight", Spec: Number{Min: 0, Max: 10, Default: 5}},
		{Name: "level", Spec: Int{Min: 1, Max: 5, Default: 3}},
		{Name: "title", Spec: String{MaxLen: 10}},
		{Name: "category", Spec: Enum{Allowed: []string{"tool", "language"}, Default: "tool"}},
		{Name: "active", Spec: Bool{Default: true}},
		{Name: "tags", Spec: StringList(3, 5)},
	}}
	return schema
}

func TestSanitizeClampsNumbers(t *testing.T) {
	result, diags := Sanitize(map[string]any{"weight": 42.0, "level": -7.0}, testSchema())
	assert.Equal(t, 10.0, result["weight"])
	assert.Equal(t, 1, result["level"])
	assert.NotEmpty(t, diags)
}

func TestSanitizeCoercesNumericStrings(t *testing.T) {
	result, _ := Sanitize(map[string]any{"weight": " 7.5 "}, testSchema())
	assert.Equal(t, 7.5, result["weight"])
}

func TestSanitizeDefaultsBadTypes(t *testing.T) {
	payload := map[string]any{
		"weight":   "heavy",
		"level":    []any{1},
		"title":    map[string]any{},
		"category": "fruit",
		"active":   "yes",
		"tags":     "not a list",
	}
	result, _ := Sanitize(payload, testSchema())

	assert.Equal(t, 5.0, result["weight"])
	assert.Equal(t, 3, result["level"])
	assert.Equal(t, "", result["title"])
	assert.Equal(t, "tool", result["category"])
	assert.Equal(t, true, result["active"])
	assert.Equal(t, []any{}, result["tags"])
}

func TestSanitizeTruncatesStrings(t *testing.T) {
	result, _ := Sanitize(map[string]any{"title": "a very long project title"}, testSchema())
	assert.Equal(t, "a very lon", result["title"])
}

func TestSanitizeStripsNullBytes(t *testing.T) {
	result, _ := Sanitize(map[string]any{"title": "a\x00b"}, testSchema())
	assert.Equal(t, "ab", result["title"])
}

func TestSanitizeStringifiesScalars(t *testing.T) {
	result, _ := Sanitize(map[string]any{"title": 3.5}, testSchema())
	assert.Equal(t, "3.5", result["title"])
}

func TestSanitizeTrimsEnumWhitespace(t *testing.T) {
	result, _ := Sanitize(map[string]any{"category": " language "}, testSchema())
	assert.Equal(t, "language", result["category"])
}

func TestSanitizeDiscardsUnknownKeys(t *testing.T) {
	result, _ := Sanitize(map[string]any{"weight": 5.0, "injected": "payload"}, testSchema())
	assert.NotContains(t, result, "injected")
}

func TestSanitizeArrayTruncatesAndDrops(t *testing.T) {
	payload := map[string]any{
		"tags": []any{"go", 17.0, map[string]any{}, "rust", "extra", "more"},
	}
	result, _ := Sanitize(payload, testSchema())

	// Truncated to 3 items first, then the non-string item dropped.
	assert.Equal(t, []any{"go", "17"}, result["tags"])
}

func TestSanitizeNestedAltString(t *testing.T) {
	schema := &Object{Fields: []Field{
		{Name: "architecture", Spec: Nested{
			Object: &Object{Fields: []Field{
				{Name: "description", Spec: String{MaxLen: 100}},
				{Name: "components", Spec: StringList(5, 50)},
			}},
			AltStringField: "description",
		}},
	}}

	result, _ := Sanitize(map[string]any{"architecture": "three-tier web app"}, schema)
	arch := result["architecture"].(map[string]any)
	assert.Equal(t, "three-tier web app", arch["description"])
	assert.Equal(t, []any{}, arch["components"])
}

func TestSanitizeNonObjectPayload(t *testing.T) {
	result, _ := Sanitize("not an object at all", testSchema())
	assert.Equal(t, Fallback(testSchema()), result)
}

func TestSanitizeIdempotent(t *testing.T) {
	payloads := []map[string]any{
		{"weight": 42.0, "title": "a very long project title", "tags": []any{"go", 1.0, "rust", "x", "y"}},
		{"weight": "nope", "level": 2.9, "category": "language"},
		{},
	}

	for _, payload := range payloads {
		once, _ := Sanitize(payload, testSchema())
		twice, diags := Sanitize(copyMap(once), testSchema())
		assert.Equal(t, once, twice)
		assert.Empty(t, diags, "second pass must be clean")
	}
}

func TestFallbackDeterministic(t *testing.T) {
	first := Fallback(testSchema())
	second := Fallback(testSchema())
	require.Equal(t, first, second)

	assert.Equal(t, 5.0, first["weight"])
	assert.Equal(t, 3, first["level"])
	assert.Equal(t, "", first["title"])
	assert.Equal(t, "tool", first["category"])
	assert.Equal(t, true, first["active"])
	assert.Equal(t, []any{}, first["tags"])
}

// copyMap makes a shallow copy so idempotence checks don't alias.
func copyMap(in map[string]any) (out map[string]any) {
	out = make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
