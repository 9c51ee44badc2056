package engine

// Diagnostic records one field-level normalization event. Diagnostics exist
// for observability only; they never influence control flow.
type Diagnostic struct {
	Field  string `json:"field"`
	Action string `json:"action"` // clamped | truncated | defaulted | dropped | normalized
	Detail string `json:"detail"`
}

// Diagnostics accumulates field-level events during one sanitization pass.
type Diagnostics []Diagnostic

// Record appends one event. Exported so task packages can implement custom
// Spec types.
func (d *Diagnostics) Record(field, action, detail string) {
	*d = append(*d, Diagnostic{Field: field, Action: action, Detail: detail})
}

// Sanitize normalizes an untrusted parsed payload against schema. It never
// fails: every field is independently either normalized from the payload or
// replaced by its declared default. The operation is idempotent: feeding the
// result back through produces an equal value.
func Sanitize(payload any, schema *Object) (result map[string]any, diags Diagnostics) {
	out, _ := schema.Sanitize(payload, "", &diags)
	result = out.(map[string]any)
	return result, diags
}

// Fallback builds the deterministic schema-conformant placeholder used when
// every generation attempt fails to produce acceptable output. It is the
// all-defaults sanitization of an empty payload.
func Fallback(schema *Object) (result map[string]any) {
	var diags Diagnostics
	out, _ := schema.Sanitize(map[string]any{}, "", &diags)
	result = out.(map[string]any)
	return result
}
