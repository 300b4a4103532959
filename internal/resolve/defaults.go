package resolve

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vk/skygridgo/internal/model"
)

// applyDefault distributes a top-level fields / flag_field / file_reader
// value over every descriptor that did not set its own. The value may be a
// bare payload, or a mapping that narrows where it applies: axis
// restrictions ("extent": "CCD"), direct format parts ("CCD": ...), or
// per-object-type payloads ("star": ...). Descriptor-level settings always
// win; with appendMode (flag_field) the value composes instead of filling.
func applyDefault(tables []FileTable, key string, value any, appendMode bool) error {
	return applyDefaultRec(tables, key, value, nil, "", appendMode)
}

func applyDefaultRec(tables []FileTable, key string, value any, formatParts []string, objectType string, appendMode bool) error {
	valueMap, isMap := asMap(value)
	if !isMap || onlyName(valueMap) {
		if isMap {
			value = valueMap[keyName]
		}
		for _, t := range tables {
			for _, formatKey := range t.formatKeys() {
				if !partsMatch(formatKey, formatParts) {
					continue
				}
				for _, objType := range t.objectTypes(formatKey) {
					if objectType != "" && objType != objectType {
						continue
					}
					for _, d := range t[formatKey][objType] {
						setDefault(d, key, value, appendMode)
					}
				}
			}
		}
		return nil
	}

	objectTypes := collectObjectTypes(tables)
	if key == keyFields && !looksRestricted(valueMap, tables, objectTypes) {
		// No key of the mapping names an object type or format part, so the
		// mapping itself is the payload (a field-to-column map).
		return applyDefaultRec(tables, key, map[string]any{keyName: valueMap}, formatParts, objectType, appendMode)
	}

	work := cloneCtx(valueMap)
	keys := make([]string, 0, len(work))
	for k := range work {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, valueKey := range keys {
		raw, present := work[valueKey]
		if !present {
			continue
		}
		delete(work, valueKey)
		switch {
		case valueKey == "epoch" || valueKey == "extent" || valueKey == "data_format":
			part, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%w: %s restriction on %q must be a string, got %T", ErrInvalidValue, valueKey, key, raw)
			}
			return applyDefaultRec(tables, key, work, append(formatParts, part), objectType, appendMode)
		case valueKey == "object_type":
			objType, ok := raw.(string)
			if !ok {
				return fmt.Errorf("%w: object_type restriction on %q must be a string, got %T", ErrInvalidValue, key, raw)
			}
			return applyDefaultRec(tables, key, work, formatParts, objType, appendMode)
		case contains(objectTypes, valueKey):
			if err := applyDefaultRec(tables, key, raw, formatParts, valueKey, appendMode); err != nil {
				return err
			}
		case valueKey == keyName:
			if err := applyDefaultRec(tables, key, raw, formatParts, objectType, appendMode); err != nil {
				return err
			}
		default:
			if err := applyDefaultRec(tables, key, raw, append(formatParts, valueKey), objectType, appendMode); err != nil {
				return err
			}
		}
	}
	return nil
}

func setDefault(d *model.Descriptor, key string, value any, appendMode bool) {
	switch key {
	case keyFields:
		if d.Fields == nil {
			d.Fields = value
		}
	case keyFileReader:
		if d.FileReader == nil {
			d.FileReader = value
		}
	case keyFlagField:
		if appendMode {
			d.FlagField = append(d.FlagField, flatten(value)...)
		} else if len(d.FlagField) == 0 {
			d.FlagField = flatten(value)
		}
	}
}

func onlyName(m map[string]any) bool {
	if len(m) != 1 {
		return false
	}
	_, ok := m[keyName]
	return ok
}

// partsMatch reports whether every restriction part occurs in the format
// key. Parts are matched as key substrings, so "CCD" restricts to CCD
// formats regardless of epoch and data format.
func partsMatch(formatKey string, parts []string) bool {
	for _, p := range parts {
		if !strings.Contains(formatKey, p) {
			return false
		}
	}
	return true
}

// looksRestricted reports whether any key of the mapping names an object
// type or a component of a known format key.
func looksRestricted(m map[string]any, tables []FileTable, objectTypes []string) bool {
	for k := range m {
		if contains(objectTypes, k) {
			return true
		}
		for _, t := range tables {
			for formatKey := range t {
				for _, part := range strings.Split(formatKey, "-") {
					if k == part {
						return true
					}
				}
			}
		}
	}
	return false
}

func collectObjectTypes(tables []FileTable) []string {
	seen := map[string]bool{}
	var out []string
	for _, t := range tables {
		for _, objects := range t {
			for objType := range objects {
				if !seen[objType] {
					seen[objType] = true
					out = append(out, objType)
				}
			}
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}
