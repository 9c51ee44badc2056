package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Spec describes how one field of untrusted model output is normalized.
// Sanitize always returns a schema-conformant value; conformed reports
// whether the input itself conformed (false means the value fell back to a
// default or was rejected). Array specs drop items whose element spec
// reports conformed=false.
type Spec interface {
	Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool)
}

// Object is the schema for a JSON object: an ordered list of named fields.
// Unknown keys in the payload are discarded.
type Object struct {
	Fields []Field
}

// Field binds a JSON key to its sanitization spec.
type Field struct {
	Name string
	Spec Spec
}

// Sanitize normalizes payload against the object schema. A non-object payload
// produces an all-defaults object.
func (o *Object) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	m, isMap := v.(map[string]any)
	if !isMap {
		if v != nil {
			diags.Record(path, "defaulted", "expected object")
		}
		m = map[string]any{}
	}

	result := make(map[string]any, len(o.Fields))
	for _, f := range o.Fields {
		child, _ := f.Spec.Sanitize(m[f.Name], joinPath(path, f.Name), diags)
		result[f.Name] = child
	}

	out = result
	conformed = isMap
	return out, conformed
}

// Number is a bounded float field. Coercion failures fall back to Default,
// which by convention is the midpoint of [Min, Max].
type Number struct {
	Min     float64
	Max     float64
	Default float64
}

// Sanitize coerces and clamps a numeric value.
func (n Number) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	f, coerced := coerceFloat(v)
	if !coerced || math.IsNaN(f) || math.IsInf(f, 0) {
		if v != nil {
			diags.Record(path, "defaulted", "not a number")
		}
		return n.Default, false
	}
	if f < n.Min {
		diags.Record(path, "clamped", fmt.Sprintf("%v below min %v", f, n.Min))
		f = n.Min
	}
	if f > n.Max {
		diags.Record(path, "clamped", fmt.Sprintf("%v above max %v", f, n.Max))
		f = n.Max
	}
	out = f
	conformed = true
	return out, conformed
}

// Int is a bounded integer field.
type Int struct {
	Min     int
	Max     int
	Default int
}

// Sanitize coerces and clamps an integer value. Fractional input is truncated.
func (n Int) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	f, coerced := coerceFloat(v)
	if !coerced || math.IsNaN(f) || math.IsInf(f, 0) {
		if v != nil {
			diags.Record(path, "defaulted", "not an integer")
		}
		return n.Default, false
	}
	i := int(f)
	if i < n.Min {
		diags.Record(path, "clamped", fmt.Sprintf("%d below min %d", i, n.Min))
		i = n.Min
	}
	if i > n.Max {
		diags.Record(path, "clamped", fmt.Sprintf("%d above max %d", i, n.Max))
		i = n.Max
	}
	out = i
	conformed = true
	return out, conformed
}

// String is a bounded string field. Numbers and booleans are stringified;
// anything else falls back to Default. Null bytes are stripped and the value
// is truncated to MaxLen characters (runes, not bytes).
type String struct {
	MaxLen  int
	Default string
}

// Sanitize normalizes a string value.
func (s String) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	var text string
	switch val := v.(type) {
	case string:
		text = val
	case float64, bool:
		text = fmt.Sprint(val)
	default:
		if v != nil {
			diags.Record(path, "defaulted", "not a string")
		}
		return s.Default, false
	}

	text = strings.ReplaceAll(text, "\x00", "")
	if s.MaxLen > 0 {
		runes := []rune(text)
		if len(runes) > s.MaxLen {
			diags.Record(path, "truncated", fmt.Sprintf("%d chars over limit %d", len(runes), s.MaxLen))
			text = string(runes[:s.MaxLen])
		}
	}

	out = text
	conformed = true
	return out, conformed
}

// Enum is a whitelisted string field. Values outside Allowed are replaced by
// Default, which must itself be a member of Allowed.
type Enum struct {
	Allowed []string
	Default string
}

// Sanitize normalizes an enum value.
func (e Enum) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	text, isString := v.(string)
	if isString {
		text = strings.TrimSpace(text)
		for _, allowed := range e.Allowed {
			if text == allowed {
				return text, true
			}
		}
	}
	if v != nil {
		diags.Record(path, "defaulted", fmt.Sprintf("%q not in allowed set", v))
	}
	return e.Default, false
}

// Bool is a boolean field.
type Bool struct {
	Default bool
}

// Sanitize normalizes a boolean value.
func (b Bool) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	val, isBool := v.(bool)
	if !isBool {
		if v != nil {
			diags.Record(path, "defaulted", "not a boolean")
		}
		return b.Default, false
	}
	out = val
	conformed = true
	return out, conformed
}

// Array is a bounded list field. Items are sanitized independently by Elem;
// items whose element spec reports non-conformance are dropped, shrinking the
// array rather than failing the field.
type Array struct {
	MaxItems int
	Elem     Spec
}

// Sanitize normalizes an array value.
func (a Array) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	items, isList := v.([]any)
	if !isList {
		if v != nil {
			diags.Record(path, "defaulted", "expected array")
		}
		return []any{}, false
	}

	if a.MaxItems > 0 && len(items) > a.MaxItems {
		diags.Record(path, "truncated", fmt.Sprintf("%d items over limit %d", len(items), a.MaxItems))
		items = items[:a.MaxItems]
	}

	result := make([]any, 0, len(items))
	for i, item := range items {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		clean, itemOK := a.Elem.Sanitize(item, itemPath, diags)
		if !itemOK {
			diags.Record(itemPath, "dropped", "non-conforming item")
			continue
		}
		result = append(result, clean)
	}

	out = result
	conformed = true
	return out, conformed
}

// Nested is an object field that tolerates an alternate bare-string shape:
// when the payload value is a plain string and AltStringField is set, the
// string becomes that field and the rest of the object is defaulted.
type Nested struct {
	Object         *Object
	AltStringField string
}

// Sanitize normalizes a nested object value.
func (n Nested) Sanitize(v any, path string, diags *Diagnostics) (out any, conformed bool) {
	if text, isString := v.(string); isString && n.AltStringField != "" {
		diags.Record(path, "normalized", "bare string promoted to object")
		v = map[string]any{n.AltStringField: text}
	}
	out, conformed = n.Object.Sanitize(v, path, diags)
	return out, conformed
}

// StringList is a convenience constructor for an array of bounded strings.
func StringList(maxItems, maxLen int) (spec Array) {
	spec = Array{MaxItems: maxItems, Elem: String{MaxLen: maxLen}}
	return spec
}

// coerceFloat converts JSON scalars to float64. Numeric strings are accepted;
// everything else is rejected.
func coerceFloat(v any) (f float64, ok bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return f, false
		}
		return parsed, true
	case bool:
		return f, false
	default:
		return f, false
	}
}

// joinPath builds a dotted diagnostic path.
func joinPath(parent, name string) (path string) {
	if parent == "" {
		path = name
		return path
	}
	path = parent + "." + name
	return path
}
