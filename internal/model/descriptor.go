package model

import (
	"fmt"
	"reflect"

	"github.com/vk/skygridgo/internal/bins"
	"github.com/vk/skygridgo/internal/format"
)

// Descriptor is one fully-resolved data source. Once a descriptor leaves the
// normalizer all four classification attributes (the format triple plus
// ObjectType) are bound; no partially-specified descriptor ever reaches the
// file table.
type Descriptor struct {
	// Name is the file path for the common case. After wildcard expansion it
	// can be a []any of paths (later split into one descriptor per path), or
	// for multiepoch formats a list, or list of lists, of paths that must
	// stay together as one correlated set.
	Name any

	ObjectType string
	Format     format.Format

	// Fields selects columns for the downstream reader: an ordered list or a
	// name-to-column mapping. Opaque to the resolver.
	Fields any

	// FlagField holds one or more boolean-mask column specs, combined with
	// logical AND by the downstream masking step. Inherited values compose by
	// appending rather than replacing.
	FlagField []any

	// FileReader optionally forces a reader: a reader name, or a mapping with
	// a "name" and reader options. When nil the reader is inferred from the
	// format and the file extension.
	FileReader any

	Group GroupMark

	// Wildcard requests glob expansion of Name. It is consumed by the
	// expansion pass and false thereafter.
	Wildcard bool

	// Bins is the raw bin specification attached to this source, if any.
	Bins any

	// BinList is set only by bin expansion: exactly one leaf-bin combination
	// per expanded copy.
	BinList []bins.SingleBin

	// Extra carries configuration keys the engine itself does not interpret
	// (nicknames and the like); they ride along to the data-access layer.
	Extra map[string]any
}

// Clone returns a copy sharing the opaque payload values but owning its own
// group state and Extra map, so tagging one copy never leaks into another.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Group = d.Group.clone()
	if d.Extra != nil {
		c.Extra = make(map[string]any, len(d.Extra))
		for k, v := range d.Extra {
			c.Extra[k] = v
		}
	}
	if d.BinList != nil {
		c.BinList = append([]bins.SingleBin(nil), d.BinList...)
	}
	return &c
}

// Equivalent reports whether two descriptors are identical on every
// attribute except their group tags. This is the fusing criterion during the
// merge stage.
func Equivalent(a, b *Descriptor) bool {
	ac, bc := *a, *b
	ac.Group, bc.Group = GroupMark{}, GroupMark{}
	ac.Extra, bc.Extra = nil, nil
	if !reflect.DeepEqual(ac, bc) {
		return false
	}
	if len(a.Extra) != len(b.Extra) {
		return false
	}
	for k, v := range a.Extra {
		ov, ok := b.Extra[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// String renders a short diagnostic identity for error messages.
func (d *Descriptor) String() string {
	return fmt.Sprintf("%s/%s %v", d.Format.Key(), d.ObjectType, d.Name)
}
