// Package plan parses the analysis-test half of a configuration payload:
// the "sys_test*" keys that declare which systematics tests run against
// which resolved formats. Tests reuse the resolver's nesting rules, minus
// the full-classification requirement; a test restricted to "CCD" simply
// attaches to every CCD format the file table ended up with.
package plan

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/skygridgo/internal/bins"
	"github.com/vk/skygridgo/internal/ctxlog"
	"github.com/vk/skygridgo/internal/resolve"
)

// Test kinds. The kind selects the validation schema; Type narrows to the
// concrete test within the kind.
const (
	KindCorrelationFunction = "CorrelationFunction"
	KindScatterPlot         = "ScatterPlot"
	KindWhiskerPlot         = "WhiskerPlot"
	KindStat                = "Stat"
)

// expectedKeys lists, per kind, every key a test definition may carry. The
// classification restrictions are stripped before validation, so they never
// appear here.
var expectedKeys = map[string][]string{
	KindCorrelationFunction: {"name", "bins", "type", "treecorr_kwargs", "extra_args"},
	KindScatterPlot:         {"name", "bins", "type", "extra_args"},
	KindWhiskerPlot:         {"name", "bins", "type", "extra_args"},
	KindStat:                {"name", "bins", "field", "object_type", "extra_args"},
}

// Test is one parsed systematics-test declaration.
type Test struct {
	Kind       string
	Type       string // concrete test within the kind, empty for Stat
	Field      string // Stat only: the column the statistic runs on
	ObjectType string // Stat only: the object type it applies to
	Bins       []bins.Scheme
	Extra      map[string]any
}

func (t *Test) String() string {
	if t.Type != "" {
		return t.Kind + "/" + t.Type
	}
	return t.Kind
}

// Parse walks the sorted "sys_test*" keys of a payload and attaches each
// declared test to every format key it is not restricted away from. The
// format list comes from an already-built resolver; parsing tests before
// resolving files would have nothing to attach to.
func Parse(ctx context.Context, payload map[string]any, formats []string) (map[string][]*Test, error) {
	logger := ctxlog.FromContext(ctx)
	out := make(map[string][]*Test, len(formats))
	for _, f := range formats {
		out[f] = nil
	}

	var keys []string
	for key := range payload {
		if strings.HasPrefix(key, "sys_test") {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	total := 0
	for _, key := range keys {
		items, err := testItems(payload[key])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		for _, item := range items {
			n, err := addItem(item, out, nil)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			total += n
		}
	}
	logger.Debug("parsed analysis plan", "declarations", len(keys), "attached_tests", total)
	return out, nil
}

// testItems normalizes one sys_test value into flat definition mappings. A
// mapping without "name" is a nested declaration and goes through the same
// flattening the file definitions use, in relaxed mode.
func testItems(v any) ([]map[string]any, error) {
	switch node := v.(type) {
	case map[string]any:
		if _, named := node["name"]; named {
			return []map[string]any{node}, nil
		}
		items, err := resolve.Normalize(node, false)
		if err != nil {
			return nil, err
		}
		out := make([]map[string]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, nil
	case []any:
		out := make([]map[string]any, 0, len(node))
		for _, e := range node {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: test list entries must be mappings, got %T", resolve.ErrInvalidValue, e)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: a test declaration must be a mapping or a list of mappings, got %T", resolve.ErrInvalidValue, v)
	}
}

// addItem attaches one definition to every format whose key contains all
// accumulated restriction parts. Restrictions may be a single value or a
// list of alternatives; a list fans the definition out over each value.
func addItem(item map[string]any, out map[string][]*Test, formatParts []string) (int, error) {
	for _, restriction := range []string{"epoch", "extent", "data_format"} {
		raw, ok := item[restriction]
		if !ok {
			continue
		}
		rest := make(map[string]any, len(item))
		for k, v := range item {
			if k != restriction {
				rest[k] = v
			}
		}
		switch v := raw.(type) {
		case string:
			return addItem(rest, out, append(formatParts, v))
		case []any:
			total := 0
			for _, e := range v {
				s, ok := e.(string)
				if !ok {
					return 0, fmt.Errorf("%w: %s restriction values must be strings, got %T", resolve.ErrInvalidValue, restriction, e)
				}
				n, err := addItem(rest, out, append(append([]string(nil), formatParts...), s))
				if err != nil {
					return 0, err
				}
				total += n
			}
			return total, nil
		default:
			return 0, fmt.Errorf("%w: %s restriction must be a string or list, got %T", resolve.ErrInvalidValue, restriction, raw)
		}
	}

	test, err := makeTest(item)
	if err != nil {
		return 0, err
	}
	attached := 0
	for format := range out {
		if !formatMatches(format, formatParts) {
			continue
		}
		out[format] = append(out[format], test)
		attached++
	}
	return attached, nil
}

func formatMatches(format string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(format, p) {
			return false
		}
	}
	return true
}

// makeTest validates one flat definition against its kind's schema and
// builds the typed Test.
func makeTest(item map[string]any) (*Test, error) {
	kindRaw, ok := item["name"]
	if !ok {
		return nil, fmt.Errorf("%w: a test is declared by its \"name\" key", resolve.ErrIncompleteSpec)
	}
	kind, ok := kindRaw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: test name must be a string, got %T", resolve.ErrInvalidValue, kindRaw)
	}
	allowed, known := expectedKeys[kind]
	if !known {
		return nil, fmt.Errorf("%w: unknown test kind %q", resolve.ErrInvalidValue, kind)
	}
	var unexpected []string
	for k := range item {
		if !contains(allowed, k) {
			unexpected = append(unexpected, k)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return nil, fmt.Errorf("%w: unexpected keys %v for test kind %q", resolve.ErrUnprocessedKeys, unexpected, kind)
	}

	test := &Test{Kind: kind, Extra: map[string]any{}}
	if extra, ok := item["extra_args"]; ok {
		m, isMap := extra.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: extra_args must be a mapping, got %T", resolve.ErrInvalidValue, extra)
		}
		for k, v := range m {
			test.Extra[k] = v
		}
	}
	if spec, ok := item["bins"]; ok {
		schemes, err := bins.ParseSpec(spec)
		if err != nil {
			return nil, err
		}
		test.Bins = schemes
	}

	switch kind {
	case KindCorrelationFunction:
		if err := requireString(item, "type", kind, &test.Type); err != nil {
			return nil, err
		}
		// Correlator tuning knobs ride along with the per-call extras.
		if kw, ok := item["treecorr_kwargs"]; ok {
			m, isMap := kw.(map[string]any)
			if !isMap {
				return nil, fmt.Errorf("%w: treecorr_kwargs must be a mapping, got %T", resolve.ErrInvalidValue, kw)
			}
			for k, v := range m {
				test.Extra[k] = v
			}
		}
	case KindScatterPlot, KindWhiskerPlot:
		if err := requireString(item, "type", kind, &test.Type); err != nil {
			return nil, err
		}
	case KindStat:
		if err := requireString(item, "field", kind, &test.Field); err != nil {
			return nil, err
		}
		if err := requireString(item, "object_type", kind, &test.ObjectType); err != nil {
			return nil, err
		}
	}
	return test, nil
}

func requireString(item map[string]any, key, kind string, dst *string) error {
	raw, ok := item[key]
	if !ok {
		return fmt.Errorf("%w: %s tests require a %q key", resolve.ErrIncompleteSpec, kind, key)
	}
	s, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%w: %q on a %s test must be a string, got %T", resolve.ErrInvalidValue, key, kind, raw)
	}
	*dst = s
	return nil
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
