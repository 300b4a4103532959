package resolve

import (
	"fmt"

	"github.com/vk/skygridgo/internal/bins"
	"github.com/vk/skygridgo/internal/model"
)

// expandBinned fans a descriptor list out over bin specifications: each
// descriptor carrying one produces one shallow copy per leaf-bin
// combination, annotated with that combination and nothing else. A
// descriptor that already holds a resolved bin list, or none at all, passes
// through unchanged, which makes the expansion idempotent.
func expandBinned(list []*model.Descriptor) ([]*model.Descriptor, error) {
	out := make([]*model.Descriptor, 0, len(list))
	for _, d := range list {
		if d.Bins == nil || d.BinList != nil {
			out = append(out, d)
			continue
		}
		schemes, err := bins.ParseSpec(d.Bins)
		if err != nil {
			return nil, fmt.Errorf("bin specification on %s: %w", d, err)
		}
		for _, combo := range bins.Expand(schemes) {
			c := d.Clone()
			c.BinList = combo
			out = append(out, c)
		}
	}
	return out, nil
}

// checkGroupedBins rejects descriptors that carry both a bin specification
// and a cross-object-type group tag. A binned descriptor splits into several
// and its positional identity inside the group becomes undefined, so this is
// a configuration error rather than something to guess at.
func checkGroupedBins(table FileTable) error {
	for _, formatKey := range table.formatKeys() {
		for _, objectType := range table.objectTypes(formatKey) {
			for _, d := range table[formatKey][objectType] {
				if d.Bins != nil && len(d.Group.Names) > 0 {
					return fmt.Errorf("%w: %s in group %v", ErrGroupedBins, d, d.Group.Names)
				}
			}
		}
	}
	return nil
}

// ExpandAllBins rewrites every file-table list in place, replacing each
// binned descriptor with its per-leaf-bin copies. It runs at most once per
// resolver; the group table is never touched (grouped descriptors cannot
// carry bins, so indices stay valid).
func (r *Resolver) ExpandAllBins() error {
	if r.binsExpanded {
		return nil
	}
	for _, formatKey := range r.files.formatKeys() {
		for _, objectType := range r.files.objectTypes(formatKey) {
			list := r.files[formatKey][objectType]
			// A fan-out changes list positions after it; group indices must
			// stay valid, so a list holding both binned and grouped
			// descriptors cannot be expanded in place.
			binned, grouped := false, false
			for _, d := range list {
				binned = binned || (d.Bins != nil && d.BinList == nil)
				grouped = grouped || len(d.Group.Names) > 0
			}
			if binned && grouped {
				return fmt.Errorf("%w: cannot expand %s/%s in place, list contains grouped descriptors",
					ErrGroupedBins, formatKey, objectType)
			}
			expanded, err := expandBinned(list)
			if err != nil {
				return err
			}
			r.files[formatKey][objectType] = expanded
		}
	}
	r.binsExpanded = true
	return nil
}
