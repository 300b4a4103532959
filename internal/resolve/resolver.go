package resolve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/skygridgo/internal/ctxlog"
	"github.com/vk/skygridgo/internal/format"
	"github.com/vk/skygridgo/internal/model"
)

// formatKeyOf canonicalizes a caller-supplied format specification.
func formatKeyOf(epoch any, extent, dataFormat string) (string, error) {
	key, err := format.Canonical(epoch, extent, dataFormat)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidValue, err)
	}
	return key, nil
}

// Options carries the injectable collaborators of a Resolver. The zero value
// selects production defaults.
type Options struct {
	// Glob resolves wildcard patterns. Defaults to DefaultGlobber.
	Glob Globber
}

// Resolver owns the resolved file and group tables for one configuration
// payload. It is built once, up front, and read-only afterwards except for
// the explicit ExpandAllBins rewrite. All resolution state, including the
// group-name counter, lives here; two Resolvers never interact.
type Resolver struct {
	files        FileTable
	groups       GroupTable
	glob         Globber
	nextGroup    int
	binsExpanded bool
}

// New resolves a configuration payload into a queryable Resolver. Every
// validation the engine performs happens here; a returned Resolver is
// internally consistent.
func New(ctx context.Context, payload map[string]any) (*Resolver, error) {
	return NewWithOptions(ctx, payload, Options{})
}

// NewWithOptions is New with explicit collaborators.
func NewWithOptions(ctx context.Context, payload map[string]any, opts Options) (*Resolver, error) {
	glob := opts.Glob
	if glob == nil {
		glob = DefaultGlobber
	}
	r := &Resolver{glob: glob}
	if err := r.build(ctx, payload); err != nil {
		return nil, err
	}
	return r, nil
}

// build runs the full resolution pipeline: per-source normalization,
// wildcard expansion, positional grouping and tabulation, then the
// cross-source passes (defaults, merge, fuse, group derivation, alias
// collapse).
func (r *Resolver) build(ctx context.Context, payload map[string]any) error {
	logger := ctxlog.FromContext(ctx)
	work := cloneCtx(payload)

	baseCtx := map[string]any{}
	if v, ok := work[keyGroup]; ok {
		baseCtx[keyGroup] = v
		delete(work, keyGroup)
	}
	if v, ok := work[keyWildcard]; ok {
		if _, isBool := v.(bool); !isBool {
			return fmt.Errorf("%w: top-level wildcard must be a bool, got %T", ErrInvalidValue, v)
		}
		baseCtx[keyWildcard] = v
		delete(work, keyWildcard)
	}

	var sourceKeys []string
	for key := range work {
		if strings.HasPrefix(key, "file") && key != keyFileReader {
			sourceKeys = append(sourceKeys, key)
		}
	}
	sort.Strings(sourceKeys)

	tables := make([]FileTable, 0, len(sourceKeys))
	for _, key := range sourceKeys {
		descs, err := r.parseSource(work[key], baseCtx)
		if err != nil {
			return fmt.Errorf("file source %q: %w", key, err)
		}
		table, err := tabulate(descs)
		if err != nil {
			return fmt.Errorf("file source %q: %w", key, err)
		}
		logger.Debug("parsed file source", "key", key, "descriptors", len(descs))
		tables = append(tables, table)
	}

	// Top-level reader defaults apply per source table, before merging, so a
	// restriction by format or object type sees each source's own layout.
	for _, dflt := range []struct {
		key        string
		appendMode bool
	}{
		{keyFields, false},
		{keyFlagField, true},
		{keyFileReader, false},
	} {
		v, ok := work[dflt.key]
		if !ok {
			continue
		}
		if err := applyDefault(tables, dflt.key, v, dflt.appendMode); err != nil {
			return err
		}
	}

	merged := mergeSources(tables)
	fuse(merged)
	if err := checkGroupedBins(merged); err != nil {
		return err
	}
	groups, order, err := deriveGroups(merged)
	if err != nil {
		return err
	}
	collapseAliases(merged, groups, order)

	r.files = merged
	r.groups = groups
	logger.Debug("configuration resolved",
		"sources", len(sourceKeys),
		"formats", len(merged),
		"groups", len(groups))
	return nil
}

// parseSource turns one file-source definition into a grouped descriptor
// list. Nested mappings inherit the top-level group and wildcard settings; a
// top-level plain list stands alone and its entries are never auto-grouped.
func (r *Resolver) parseSource(node any, baseCtx map[string]any) ([]*model.Descriptor, error) {
	var (
		items []Item
		err   error
	)
	switch {
	case isContainer(node):
		if _, isList := asList(node); isList {
			items, err = normalizeNode(node, map[string]any{}, true)
		} else {
			items, err = normalizeNode(node, cloneCtx(baseCtx), true)
		}
	default:
		return nil, fmt.Errorf("%w: a file source must be a mapping or a list, got %T", ErrInvalidValue, node)
	}
	if err != nil {
		return nil, err
	}

	descs := make([]*model.Descriptor, 0, len(items))
	for _, item := range items {
		d, derr := descriptorFromItem(item)
		if derr != nil {
			return nil, derr
		}
		if gerr := expandName(d, r.glob); gerr != nil {
			return nil, gerr
		}
		descs = append(descs, d)
	}
	return r.group(descs), nil
}

// Files exposes the resolved file table. Callers must treat it as read-only.
func (r *Resolver) Files() FileTable { return r.files }

// Groups exposes the derived group table. Callers must treat it as read-only.
func (r *Resolver) Groups() GroupTable { return r.groups }

// ListFileTypes returns the sorted canonical format keys present in the
// resolved table.
func (r *Resolver) ListFileTypes() []string {
	return r.files.formatKeys()
}

// GroupNames returns the sorted names of all surviving groups.
func (r *Resolver) GroupNames() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListObjects returns the sorted object types present under one format. The
// format may be given as a format.Format, a canonical key, or components.
func (r *Resolver) ListObjects(epoch any, extent, dataFormat string) ([]string, error) {
	key, err := formatKeyOf(epoch, extent, dataFormat)
	if err != nil {
		return nil, err
	}
	if _, ok := r.files[key]; !ok {
		return nil, nil
	}
	return r.files.objectTypes(key), nil
}

// ListData returns the descriptor list for one format and object type, in
// table order. Descriptors carrying a bin specification are fanned out into
// per-bin copies in the returned slice; the table itself is not modified.
func (r *Resolver) ListData(objectType string, epoch any, extent, dataFormat string) ([]*model.Descriptor, error) {
	key, err := formatKeyOf(epoch, extent, dataFormat)
	if err != nil {
		return nil, err
	}
	return expandBinned(r.files[key][objectType])
}

// ListDataGrouped returns, for each group under the given format that covers
// every requested object type, the descriptors of that group in the order
// the object types were requested. Groups are visited in sorted name order.
func (r *Resolver) ListDataGrouped(objectTypes []string, epoch any, extent, dataFormat string) ([][]*model.Descriptor, error) {
	key, err := formatKeyOf(epoch, extent, dataFormat)
	if err != nil {
		return nil, err
	}
	var out [][]*model.Descriptor
	for _, name := range r.GroupNames() {
		byObject, ok := r.groups[name][key]
		if !ok {
			continue
		}
		tuple := make([]*model.Descriptor, 0, len(objectTypes))
		covered := true
		for _, objectType := range objectTypes {
			idx, ok := byObject[objectType]
			if !ok {
				covered = false
				break
			}
			tuple = append(tuple, r.files[key][objectType][idx])
		}
		if covered {
			out = append(out, tuple)
		}
	}
	return out, nil
}

// Occurrence locates one descriptor inside the file table.
type Occurrence struct {
	Format     string
	ObjectType string
	Index      int
	Descriptor *model.Descriptor
}

// QueryFile reports every place a file name occurs in the resolved table,
// including membership in a multiepoch name list. It exists for diagnostics;
// nothing in the engine depends on it.
func (r *Resolver) QueryFile(name string) []Occurrence {
	var out []Occurrence
	for _, formatKey := range r.files.formatKeys() {
		for _, objectType := range r.files.objectTypes(formatKey) {
			for i, d := range r.files[formatKey][objectType] {
				if descriptorNames(d, name) {
					out = append(out, Occurrence{
						Format:     formatKey,
						ObjectType: objectType,
						Index:      i,
						Descriptor: d,
					})
				}
			}
		}
	}
	return out
}

func descriptorNames(d *model.Descriptor, name string) bool {
	if s, ok := d.Name.(string); ok {
		return s == name
	}
	for _, e := range flatten(d.Name) {
		if s, ok := e.(string); ok && s == name {
			return true
		}
	}
	return false
}
