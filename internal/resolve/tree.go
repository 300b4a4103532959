package resolve

// Helpers for walking the untyped configuration tree. The loaders produce
// map[string]any and []any nodes; these keep the type switches in one place.

// asMap reports whether v is a mapping node.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asList reports whether v is a sequence node. Strings are scalars here, not
// sequences.
func asList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	default:
		return nil, false
	}
}

// isContainer reports whether v is a mapping or a sequence. The multiepoch
// shape rules hinge on this distinction.
func isContainer(v any) bool {
	if _, ok := asMap(v); ok {
		return true
	}
	_, ok := asList(v)
	return ok
}

// flatten recursively flattens nested sequences into one flat list; a scalar
// becomes a one-element list, nil becomes an empty one.
func flatten(v any) []any {
	if v == nil {
		return nil
	}
	l, ok := asList(v)
	if !ok {
		return []any{v}
	}
	var out []any
	for _, e := range l {
		out = append(out, flatten(e)...)
	}
	return out
}

// cloneCtx copies a context map so sibling branches of the recursion never
// share mutable state.
func cloneCtx(ctx map[string]any) map[string]any {
	c := make(map[string]any, len(ctx)+2)
	for k, v := range ctx {
		c[k] = v
	}
	return c
}
