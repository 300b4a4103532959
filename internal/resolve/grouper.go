package resolve

import (
	"fmt"
	"sort"

	"github.com/vk/skygridgo/internal/model"
)

// groupNamePrefix is the stem of synthesized group names. The counter behind
// it belongs to one Resolver for the duration of one resolution; there is no
// process-wide state.
const groupNamePrefix = "_skygrid_group_"

// group runs count-matched positional pairing over one source list: for each
// format where more than one object type is present and all the per-type
// descriptor counts are equal, the i-th descriptor of every type is assumed
// to belong with the i-th descriptor of every other type and the tuple gets
// a freshly minted group name. Order is the only correspondence signal; the
// engine never inspects file contents or names to match descriptors, so the
// caller owns keeping lists ordered consistently across object types.
//
// Descriptors with a plain list of names are split here into one descriptor
// per entry, so each file can be paired individually. Multiepoch descriptors
// stay whole: their name list is one correlated set.
func (r *Resolver) group(descs []*model.Descriptor) []*model.Descriptor {
	type bucket struct {
		indices map[string][]int // object type -> positions in out
	}
	buckets := map[string]*bucket{}
	var out []*model.Descriptor

	record := func(d *model.Descriptor) {
		out = append(out, d)
		key := d.Format.Key()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{indices: map[string][]int{}}
			buckets[key] = b
		}
		b.indices[d.ObjectType] = append(b.indices[d.ObjectType], len(out)-1)
	}

	for _, d := range descs {
		if !d.Group.Eligible() {
			out = append(out, d)
			continue
		}
		if _, isScalar := d.Name.(string); isScalar || d.Format.Multiepoch() {
			record(d)
			continue
		}
		list, ok := asList(d.Name)
		if !ok {
			record(d)
			continue
		}
		for _, name := range list {
			c := d.Clone()
			c.Name = name
			record(c)
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b := buckets[key]
		if len(b.indices) < 2 {
			continue
		}
		count := -1
		matched := true
		for _, idx := range b.indices {
			if count == -1 {
				count = len(idx)
			} else if len(idx) != count {
				matched = false
				break
			}
		}
		if !matched {
			// Unequal counts: no pairing for this format, and not an error.
			continue
		}
		for _, idx := range b.indices {
			for i, pos := range idx {
				out[pos].Group.Assign(fmt.Sprintf("%s%d", groupNamePrefix, r.nextGroup+i))
			}
		}
		r.nextGroup += count
	}
	return out
}
