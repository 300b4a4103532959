package resolve

import (
	"sort"

	"github.com/vk/skygridgo/internal/model"
)

// FileTable is the resolved file table: format key to object type to the
// ordered list of descriptors. List order is significant; it is the basis
// for positional pairing and is preserved from the concatenation order of
// the input sources.
type FileTable map[string]map[string][]*model.Descriptor

// GroupTable is the derived group reverse-index: group name to format key to
// object type to an index into the corresponding FileTable list. It is built
// and pruned entirely by the engine.
type GroupTable map[string]map[string]map[string]int

func (t FileTable) add(formatKey, objectType string, d *model.Descriptor) {
	objects, ok := t[formatKey]
	if !ok {
		objects = map[string][]*model.Descriptor{}
		t[formatKey] = objects
	}
	objects[objectType] = append(objects[objectType], d)
}

// formatKeys returns the table's format keys in sorted order.
func (t FileTable) formatKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t FileTable) objectTypes(formatKey string) []string {
	objects := t[formatKey]
	keys := make([]string, 0, len(objects))
	for k := range objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// tabulate buckets one grouped source list by format and object type. Any
// descriptor still holding a plain list of names (one that skipped the
// grouper's split because it opted out of grouping) is split here, one
// descriptor per entry; a mapping entry inside the list overlays its keys
// onto the split copy. Multiepoch descriptors keep their name lists whole.
func tabulate(descs []*model.Descriptor) (FileTable, error) {
	table := FileTable{}
	for _, d := range descs {
		key := d.Format.Key()
		if d.Format.Multiepoch() {
			table.add(key, d.ObjectType, d)
			continue
		}
		if _, isScalar := d.Name.(string); isScalar {
			table.add(key, d.ObjectType, d)
			continue
		}
		for _, name := range flatten(d.Name) {
			c := d.Clone()
			if overlay, ok := asMap(name); ok {
				if err := applyOverlay(c, overlay); err != nil {
					return nil, err
				}
			} else {
				c.Name = name
			}
			table.add(key, c.ObjectType, c)
		}
	}
	return table, nil
}
