package resolve

import (
	"fmt"
	"reflect"

	"github.com/vk/skygridgo/internal/model"
)

// mergeSources concatenates the per-source tables into one, preserving
// source order within every (format, object type) list.
func mergeSources(tables []FileTable) FileTable {
	merged := FileTable{}
	for _, t := range tables {
		for _, formatKey := range t.formatKeys() {
			for _, objectType := range t.objectTypes(formatKey) {
				for _, d := range t[formatKey][objectType] {
					merged.add(formatKey, objectType, d)
				}
			}
		}
	}
	return merged
}

// fuse removes exact duplicates within each list: two descriptors identical
// on everything but their group tags collapse into one carrying the union of
// both tag lists. Bare boolean group markers are normalized away first; they
// carry no information once grouping has run.
func fuse(table FileTable) {
	for _, formatKey := range table.formatKeys() {
		for _, objectType := range table.objectTypes(formatKey) {
			list := table[formatKey][objectType]
			for _, d := range list {
				d.Group.Normalize()
			}
			kept := make([]*model.Descriptor, 0, len(list))
			for _, d := range list {
				fused := false
				for _, k := range kept {
					if model.Equivalent(k, d) {
						k.Group.Union(d.Group)
						fused = true
						break
					}
				}
				if !fused {
					kept = append(kept, d)
				}
			}
			table[formatKey][objectType] = kept
		}
	}
}

// deriveGroups scans every descriptor's group tags and builds the reverse
// index. A group name spanning two formats, or naming the same object type
// twice under one format, is a configuration conflict: the group would not
// identify one joint set of files. The returned order records first
// appearance, which decides who survives alias collapse.
func deriveGroups(table FileTable) (GroupTable, []string, error) {
	groups := GroupTable{}
	var order []string
	for _, formatKey := range table.formatKeys() {
		for _, objectType := range table.objectTypes(formatKey) {
			for i, d := range table[formatKey][objectType] {
				for _, name := range d.Group.Names {
					entry, ok := groups[name]
					if !ok {
						entry = map[string]map[string]int{}
						groups[name] = entry
						order = append(order, name)
					} else if _, sameFormat := entry[formatKey]; !sameFormat {
						return nil, nil, fmt.Errorf("%w: group %q spans more than one format: %v and %q",
							ErrGroupConflict, name, knownFormats(entry), formatKey)
					}
					byObject, ok := entry[formatKey]
					if !ok {
						byObject = map[string]int{}
						entry[formatKey] = byObject
					}
					if prev, dup := byObject[objectType]; dup {
						return nil, nil, fmt.Errorf("%w: group %q names object type %q twice under %s (indices %d and %d)",
							ErrGroupConflict, name, objectType, formatKey, prev, i)
					}
					byObject[objectType] = i
				}
			}
		}
	}
	return groups, order, nil
}

func knownFormats(entry map[string]map[string]int) []string {
	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	return keys
}

// collapseAliases deletes any group that selects exactly the same
// format/object-type/index set as an earlier one, and strips the deleted
// name off every descriptor that carried it.
func collapseAliases(table FileTable, groups GroupTable, order []string) {
	for i, name := range order {
		entry, ok := groups[name]
		if !ok {
			continue
		}
		for _, other := range order[i+1:] {
			otherEntry, ok := groups[other]
			if !ok {
				continue
			}
			if reflect.DeepEqual(entry, otherEntry) {
				delete(groups, other)
				removeGroup(table, other)
			}
		}
	}
}

// removeGroup strips a group name from every descriptor carrying it.
func removeGroup(table FileTable, name string) {
	for _, objects := range table {
		for _, list := range objects {
			for _, d := range list {
				d.Group.Remove(name)
			}
		}
	}
}
