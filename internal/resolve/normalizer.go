package resolve

import (
	"fmt"
	"sort"

	"github.com/vk/skygridgo/internal/format"
)

// Item is one flattened raw descriptor as produced by the normalizer: a
// mapping whose classification axes are bound under their literal key names
// ("epoch", "extent", "data_format", "object_type").
type Item = map[string]any

// Control keys the normalizer understands at any nesting level. Everything
// else is either a classification-axis key, a terminal descriptor body, or
// an error.
const (
	keyName       = "name"
	keyGroup      = "group"
	keyWildcard   = "wildcard"
	keyFields     = "fields"
	keyFlagField  = "flag_field"
	keyFileReader = "file_reader"
	keyBins       = "bins"
)

// Normalize flattens one arbitrarily-nested source definition into a flat
// ordered list of fully-resolved items. Keys set at an outer level are
// inherited by all descendants unless a descendant re-specifies them; each
// branch of the recursion gets its own copy of the context, so siblings can
// never observe one another's bindings.
//
// With strict unset the full-classification requirement is waived; that mode
// serves payloads that describe analyses rather than files.
func Normalize(node any, strict bool) ([]Item, error) {
	return normalizeNode(node, map[string]any{}, strict)
}

func normalizeNode(node any, ctx map[string]any, strict bool) ([]Item, error) {
	if list, ok := asList(node); ok {
		return normalizeList(list, ctx, strict)
	}
	if m, ok := asMap(node); ok {
		return normalizeMap(m, ctx, strict)
	}
	// A bare scalar under a fully-nested context is a single file name.
	item := cloneCtx(ctx)
	item[keyName] = node
	if err := checkComplete(item, strict); err != nil {
		return nil, err
	}
	return []Item{item}, nil
}

// normalizeList handles the leaf stage: the context has been accumulated on
// the way down and the list holds the final per-descriptor content.
func normalizeList(list []any, ctx map[string]any, strict bool) ([]Item, error) {
	if len(ctx) == 0 {
		// A top-level plain list: complete descriptor mappings, not grouped
		// unless each one asks for it.
		items := make([]Item, 0, len(list))
		for _, e := range list {
			m, ok := asMap(e)
			if !ok {
				return nil, fmt.Errorf("%w: top-level file list elements must be mappings, got %T", ErrInvalidValue, e)
			}
			item := cloneCtx(m)
			if _, ok := item[keyGroup]; !ok {
				item[keyGroup] = false
			}
			if err := checkComplete(item, strict); err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	if strict && !anyAxisBound(ctx) {
		return nil, fmt.Errorf("%w: list %v reached without any classification key in context", ErrIncompleteSpec, list)
	}

	if ctx[format.KeyEpoch] == format.EpochMultiepoch {
		return normalizeMultiepochList(list, ctx, strict)
	}

	items := make([]Item, 0, len(list))
	for _, e := range list {
		if m, ok := asMap(e); ok {
			item, err := mergeLeaf(m, ctx, strict)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			continue
		}
		item := cloneCtx(ctx)
		item[keyName] = e
		if err := checkComplete(item, strict); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// normalizeMultiepochList applies the multiepoch shape rules: a flat list is
// one correlated set analyzed together; a list of containers splits into
// independent descriptors each keeping its inner list as the name; a mix of
// the two cannot be disambiguated.
func normalizeMultiepochList(list []any, ctx map[string]any, strict bool) ([]Item, error) {
	containers := 0
	for _, e := range list {
		if isContainer(e) {
			containers++
		}
	}
	switch {
	case containers == len(list):
		items := make([]Item, 0, len(list))
		for _, e := range list {
			if m, ok := asMap(e); ok {
				item, err := mergeLeaf(m, ctx, strict)
				if err != nil {
					return nil, err
				}
				items = append(items, item)
				continue
			}
			item := cloneCtx(ctx)
			item[keyName] = e
			if err := checkComplete(item, strict); err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	case containers > 0:
		return nil, fmt.Errorf("%w: multiepoch list %v mixes iterable and non-iterable entries", ErrAmbiguousShape, list)
	default:
		item := cloneCtx(ctx)
		item[keyName] = list
		if err := checkComplete(item, strict); err != nil {
			return nil, err
		}
		return []Item{item}, nil
	}
}

// normalizeMap consumes one mapping level: control keys first, then any keys
// that name a member of a classification-axis domain (recursing into their
// values with the axis bound), then whatever is left, which must be a single
// terminal descriptor carrying "name".
func normalizeMap(m map[string]any, ctx map[string]any, strict bool) ([]Item, error) {
	work := cloneCtx(m)
	base := cloneCtx(ctx)
	if err := extractControls(work, base); err != nil {
		return nil, err
	}

	var items []Item
	for _, axis := range format.Axes {
		var matched []string
		for key := range work {
			if axis.Contains(key) {
				matched = append(matched, key)
			}
		}
		if len(matched) == 0 {
			continue
		}
		if bound, ok := ctx[axis.Name]; ok {
			return nil, fmt.Errorf("%w: %s already bound to %v, also given as %v", ErrDuplicateSpec, axis.Name, bound, matched)
		}
		sort.Strings(matched)
		for _, key := range matched {
			child := work[key]
			delete(work, key)
			childCtx := cloneCtx(base)
			childCtx[axis.Name] = key
			sub, err := normalizeNode(child, childCtx, strict)
			if err != nil {
				return nil, err
			}
			items = append(items, sub...)
		}
	}

	if len(work) > 0 {
		if _, ok := work[keyName]; !ok {
			keys := make([]string, 0, len(work))
			for k := range work {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("%w: %v", ErrUnprocessedKeys, keys)
		}
		item, err := mergeLeaf(work, base, strict)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// extractControls moves the non-classification control keys from a mapping
// into the context. All of them replace an inherited value except
// flag_field, which composes by appending: flag conditions are cuts meant to
// stack, not alternatives.
func extractControls(work, base map[string]any) error {
	if v, ok := work[keyGroup]; ok {
		// Any shape is accepted here; descriptor construction validates it.
		base[keyGroup] = v
		delete(work, keyGroup)
	}
	if v, ok := work[keyWildcard]; ok {
		if _, isBool := v.(bool); !isBool {
			return fmt.Errorf("%w: wildcard must be a bool, got %T", ErrInvalidValue, v)
		}
		base[keyWildcard] = v
		delete(work, keyWildcard)
	}
	if v, ok := work[keyFields]; ok {
		if !isContainer(v) {
			return fmt.Errorf("%w: fields must be a list or mapping, got %T", ErrInvalidValue, v)
		}
		base[keyFields] = v
		delete(work, keyFields)
	}
	if v, ok := work[keyFlagField]; ok {
		if err := checkFlagField(v); err != nil {
			return err
		}
		if inherited, has := base[keyFlagField]; has {
			base[keyFlagField] = []any{inherited, v}
		} else {
			base[keyFlagField] = v
		}
		delete(work, keyFlagField)
	}
	if v, ok := work[keyFileReader]; ok {
		switch v.(type) {
		case string, map[string]any:
			base[keyFileReader] = v
		default:
			return fmt.Errorf("%w: file_reader must be a name or a mapping, got %T", ErrInvalidValue, v)
		}
		delete(work, keyFileReader)
	}
	return nil
}

func checkFlagField(v any) error {
	switch v.(type) {
	case string, []any, []string, map[string]any:
		return nil
	default:
		return fmt.Errorf("%w: flag_field must be a string, list, or mapping, got %T", ErrInvalidValue, v)
	}
}

// mergeLeaf overlays one terminal mapping onto the context. A classification
// axis present in both is a duplicate definition even when the values agree:
// the configuration said the same thing in two places and one of them is not
// doing what its author thinks.
func mergeLeaf(leaf map[string]any, ctx map[string]any, strict bool) (Item, error) {
	for _, axis := range format.Axes {
		_, inLeaf := leaf[axis.Name]
		_, inCtx := ctx[axis.Name]
		if inLeaf && inCtx {
			return nil, fmt.Errorf("%w: %s defined for item %v and inherited from an outer level", ErrDuplicateSpec, axis.Name, leaf)
		}
	}
	if strict {
		for _, axis := range format.Axes {
			_, inLeaf := leaf[axis.Name]
			_, inCtx := ctx[axis.Name]
			if !inLeaf && !inCtx {
				return nil, fmt.Errorf("%w: item %v missing %s", ErrIncompleteSpec, leaf, axis.Name)
			}
		}
	}
	item := cloneCtx(ctx)
	for k, v := range leaf {
		item[k] = v
	}
	return item, nil
}

func anyAxisBound(ctx map[string]any) bool {
	for _, axis := range format.Axes {
		if _, ok := ctx[axis.Name]; ok {
			return true
		}
	}
	return false
}

func checkComplete(item Item, strict bool) error {
	if !strict {
		return nil
	}
	for _, axis := range format.Axes {
		if _, ok := item[axis.Name]; !ok {
			return fmt.Errorf("%w: item %v missing %s", ErrIncompleteSpec, item, axis.Name)
		}
	}
	return nil
}
