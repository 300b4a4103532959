package bins

import (
	"fmt"
	"sort"
)

// expectedKeys lists the configuration keys each scheme kind accepts.
// Anything else in a bin definition is rejected outright.
var expectedKeys = map[string][]string{
	"List": {"name", "field", "endpoints"},
	"Step": {"name", "field", "low", "high", "step", "n_bins", "use_log"},
}

// ParseSpec turns a raw bin specification (one mapping, or a list of
// mappings) into the ordered list of Schemes it describes.
func ParseSpec(spec any) ([]Scheme, error) {
	var defs []any
	switch v := spec.(type) {
	case map[string]any:
		defs = []any{v}
	case []any:
		defs = v
	default:
		return nil, fmt.Errorf("bin specification must be a mapping or a list of mappings, got %T", spec)
	}
	schemes := make([]Scheme, 0, len(defs))
	for _, raw := range defs {
		def, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("bin definition must be a mapping, got %T", raw)
		}
		scheme, err := parseOne(def)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, scheme)
	}
	return schemes, nil
}

func parseOne(def map[string]any) (Scheme, error) {
	name, ok := def["name"].(string)
	if !ok {
		return nil, fmt.Errorf("bins are defined by a \"name\" key, not found in %v", def)
	}
	allowed, ok := expectedKeys[name]
	if !ok {
		return nil, fmt.Errorf("unknown bin scheme name %q", name)
	}
	var unexpected []string
	for key := range def {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		return nil, fmt.Errorf("unexpected keys %v for bin scheme %q", unexpected, name)
	}
	field, ok := def["field"].(string)
	if !ok || field == "" {
		return nil, fmt.Errorf("bin scheme %q must define the field to bin on, given %v", name, def)
	}

	switch name {
	case "List":
		raw, ok := def["endpoints"].([]any)
		if !ok {
			return nil, fmt.Errorf("bin scheme List on %q must define a list of endpoints", field)
		}
		endpoints := make([]float64, 0, len(raw))
		for _, e := range raw {
			f, ok := toFloat(e)
			if !ok {
				return nil, fmt.Errorf("bin scheme List on %q: endpoint %v is not a number", field, e)
			}
			endpoints = append(endpoints, f)
		}
		return NewList(field, endpoints)
	case "Step":
		low, err := optFloat(def, "low")
		if err != nil {
			return nil, err
		}
		high, err := optFloat(def, "high")
		if err != nil {
			return nil, err
		}
		step, err := optFloat(def, "step")
		if err != nil {
			return nil, err
		}
		var nBins *int
		if raw, present := def["n_bins"]; present {
			f, ok := toFloat(raw)
			if !ok || f != float64(int(f)) {
				return nil, fmt.Errorf("bin scheme Step on %q: n_bins must be an integer, got %v", field, raw)
			}
			n := int(f)
			nBins = &n
		}
		useLog, _ := def["use_log"].(bool)
		return NewStep(field, low, high, step, nBins, useLog)
	}
	// Unreachable: expectedKeys gates the names.
	return nil, fmt.Errorf("unknown bin scheme name %q", name)
}

func optFloat(def map[string]any, key string) (*float64, error) {
	raw, present := def[key]
	if !present {
		return nil, nil
	}
	f, ok := toFloat(raw)
	if !ok {
		return nil, fmt.Errorf("bin key %q must be a number, got %v", key, raw)
	}
	return &f, nil
}

// toFloat accepts the numeric types the YAML, JSON and HCL loaders produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
