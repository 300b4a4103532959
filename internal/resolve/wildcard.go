package resolve

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/vk/skygridgo/internal/model"
)

// Globber resolves a glob pattern into concrete file names. The default is
// filepath.Glob; tests inject their own. Identical patterns are re-resolved
// each time they appear: resolution runs once per process, so memoization
// buys nothing.
type Globber func(pattern string) ([]string, error)

// DefaultGlobber matches patterns against the local filesystem.
func DefaultGlobber(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// expandName normalizes a descriptor's name into list form, resolving glob
// patterns when the descriptor asked for wildcard expansion. For multiepoch
// formats the "set of files analyzed together" shape is preserved: a scalar
// pattern becomes one concrete match list, and a list of patterns becomes
// sibling lists. Empty matches are dropped.
func expandName(d *model.Descriptor, glob Globber) error {
	expanded, err := expandValue(d.Name, d.Wildcard, d.Format.Multiepoch(), glob)
	if err != nil {
		return fmt.Errorf("expanding name of %s: %w", d, err)
	}
	filtered := make([]any, 0, len(expanded))
	for _, e := range expanded {
		if isEmptyEntry(e) {
			continue
		}
		filtered = append(filtered, e)
	}
	d.Name = filtered
	d.Wildcard = false
	return nil
}

func expandValue(name any, wildcard, multiepoch bool, glob Globber) ([]any, error) {
	if !wildcard {
		if multiepoch {
			if list, ok := asList(name); ok {
				return list, nil
			}
			return []any{name}, nil
		}
		return flatten(name), nil
	}

	if multiepoch {
		list, ok := asList(name)
		if !ok {
			return globStrings(name, glob)
		}
		containers := 0
		for _, e := range list {
			if isContainer(e) {
				containers++
			}
		}
		if containers > 0 && containers < len(list) {
			return nil, fmt.Errorf("%w: multiepoch name %v mixes patterns and pattern lists", ErrAmbiguousShape, list)
		}
		// Each element expands independently and stays a sibling list, so
		// the correlated sets remain distinguishable.
		out := make([]any, 0, len(list))
		for _, e := range list {
			sub, err := expandValue(e, true, containers > 0, glob)
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
		}
		return out, nil
	}

	var out []any
	for _, e := range flatten(name) {
		matches, err := globStrings(e, glob)
		if err != nil {
			return nil, err
		}
		out = append(out, matches...)
	}
	return out, nil
}

func globStrings(pattern any, glob Globber) ([]any, error) {
	s, ok := pattern.(string)
	if !ok {
		return nil, fmt.Errorf("%w: cannot glob non-string name %v (%T)", ErrAmbiguousShape, pattern, pattern)
	}
	matches, err := glob(s)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	out := make([]any, len(matches))
	for i, m := range matches {
		out[i] = m
	}
	return out, nil
}

func isEmptyEntry(e any) bool {
	if s, ok := e.(string); ok {
		return s == ""
	}
	if l, ok := asList(e); ok {
		return len(l) == 0
	}
	return e == nil
}
