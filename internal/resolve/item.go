package resolve

import (
	"fmt"

	"github.com/vk/skygridgo/internal/format"
	"github.com/vk/skygridgo/internal/model"
)

// descriptorFromItem turns one normalized item into a typed Descriptor,
// validating that all four classification axes made it through.
func descriptorFromItem(item Item) (*model.Descriptor, error) {
	work := cloneCtx(item)

	epoch, err := popAxis(work, format.KeyEpoch)
	if err != nil {
		return nil, err
	}
	extent, err := popAxis(work, format.KeyExtent)
	if err != nil {
		return nil, err
	}
	dataFormat, err := popAxis(work, format.KeyDataFormat)
	if err != nil {
		return nil, err
	}
	objectType, err := popAxis(work, format.KeyObjectType)
	if err != nil {
		return nil, err
	}

	name, ok := work[keyName]
	if !ok {
		return nil, fmt.Errorf("%w: item %v has no name", ErrIncompleteSpec, item)
	}
	delete(work, keyName)

	d := &model.Descriptor{
		Name:       name,
		ObjectType: objectType,
		Format:     format.New(epoch, extent, dataFormat),
	}

	if v, ok := work[keyGroup]; ok {
		mark, err := model.ParseGroupMark(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		d.Group = mark
		delete(work, keyGroup)
	}
	if v, ok := work[keyWildcard]; ok {
		w, isBool := v.(bool)
		if !isBool {
			return nil, fmt.Errorf("%w: wildcard must be a bool, got %T", ErrInvalidValue, v)
		}
		d.Wildcard = w
		delete(work, keyWildcard)
	}
	if v, ok := work[keyFields]; ok {
		d.Fields = v
		delete(work, keyFields)
	}
	if v, ok := work[keyFlagField]; ok {
		// Composition on the way down may have nested pairs; the AND of a
		// flattened list is the same cut.
		d.FlagField = flatten(v)
		delete(work, keyFlagField)
	}
	if v, ok := work[keyFileReader]; ok {
		d.FileReader = v
		delete(work, keyFileReader)
	}
	if v, ok := work[keyBins]; ok {
		d.Bins = v
		delete(work, keyBins)
	}
	if len(work) > 0 {
		d.Extra = work
	}
	return d, nil
}

func popAxis(work map[string]any, axis string) (string, error) {
	v, ok := work[axis]
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrIncompleteSpec, axis)
	}
	s, isString := v.(string)
	if !isString {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidValue, axis, v)
	}
	delete(work, axis)
	return s, nil
}

// applyOverlay merges a mapping found inside a name list onto a descriptor
// copy: the mapping re-specifies the name and may refine reader details for
// that one file.
func applyOverlay(d *model.Descriptor, overlay map[string]any) error {
	for k, v := range overlay {
		switch k {
		case keyName:
			d.Name = v
		case keyFields:
			d.Fields = v
		case keyFlagField:
			d.FlagField = flatten(v)
		case keyFileReader:
			d.FileReader = v
		case keyBins:
			d.Bins = v
		case keyGroup:
			mark, err := model.ParseGroupMark(v)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			d.Group = mark
		default:
			if d.Extra == nil {
				d.Extra = map[string]any{}
			}
			d.Extra[k] = v
		}
	}
	if _, ok := overlay[keyName]; !ok {
		return fmt.Errorf("%w: name entry %v does not name a file", ErrIncompleteSpec, overlay)
	}
	return nil
}
