// Package readers maps a descriptor's file_reader setting to a concrete
// read plan. The engine never opens data files itself; it only decides, per
// descriptor, which reader an analysis runtime should call and with what
// options.
package readers

import (
	"errors"
	"fmt"
	"strings"
)

// Reader kinds.
const (
	KindASCII = "ASCII"
	KindFITS  = "FITS"
)

// Sentinel errors for reader resolution.
var (
	ErrUnknownReader = errors.New("unknown file reader")
	ErrBadDataFormat = errors.New("data format must be \"catalog\" or \"image\"")
)

// Plan is a fully-resolved instruction for reading one file.
type Plan struct {
	Kind  string
	Image bool // FITS only: image extension instead of a binary table
	Extra map[string]any
}

func (p Plan) String() string {
	if p.Image {
		return p.Kind + " image"
	}
	return p.Kind + " table"
}

// Resolve turns a descriptor's file_reader value into a Plan. A nil value
// falls back to extension inference; a string names a reader directly; a
// mapping may name one and attach extra reader options under "extra_kwargs".
func Resolve(fileReader any, dataFormat, fileName string) (Plan, error) {
	image, err := isImage(dataFormat)
	if err != nil {
		return Plan{}, err
	}

	switch v := fileReader.(type) {
	case nil:
		return inferred(fileName, image), nil
	case string:
		return named(v, image, nil)
	case map[string]any:
		var extra map[string]any
		if raw, ok := v["extra_kwargs"]; ok {
			m, isMap := raw.(map[string]any)
			if !isMap {
				return Plan{}, fmt.Errorf("extra_kwargs must be a mapping, got %T", raw)
			}
			extra = m
		}
		for k := range v {
			if k != "name" && k != "extra_kwargs" {
				return Plan{}, fmt.Errorf("unexpected file_reader key %q", k)
			}
		}
		raw, ok := v["name"]
		if !ok {
			p := inferred(fileName, image)
			p.Extra = extra
			return p, nil
		}
		name, isString := raw.(string)
		if !isString {
			return Plan{}, fmt.Errorf("file_reader name must be a string, got %T", raw)
		}
		return named(name, image, extra)
	default:
		return Plan{}, fmt.Errorf("%w: %v (%T)", ErrUnknownReader, fileReader, fileReader)
	}
}

func named(name string, image bool, extra map[string]any) (Plan, error) {
	switch name {
	case KindASCII:
		if image {
			return Plan{}, fmt.Errorf("%w: ASCII readers only produce catalogs", ErrBadDataFormat)
		}
		return Plan{Kind: KindASCII, Extra: extra}, nil
	case KindFITS:
		return Plan{Kind: KindFITS, Image: image, Extra: extra}, nil
	default:
		return Plan{}, fmt.Errorf("%w: %q", ErrUnknownReader, name)
	}
}

// inferred picks a reader from the file extension: the FITS conventions
// (.fit, .fits, optionally gzipped) select FITS, everything else is read as
// an ASCII table.
func inferred(fileName string, image bool) Plan {
	lower := strings.ToLower(fileName)
	lower = strings.TrimSuffix(lower, ".gz")
	if strings.HasSuffix(lower, ".fit") || strings.HasSuffix(lower, ".fits") {
		return Plan{Kind: KindFITS, Image: image}
	}
	if image {
		// Non-FITS images have no ASCII rendition; FITS is the only image
		// reader available.
		return Plan{Kind: KindFITS, Image: true}
	}
	return Plan{Kind: KindASCII}
}

func isImage(dataFormat string) (bool, error) {
	switch strings.ToLower(dataFormat) {
	case "catalog":
		return false, nil
	case "image":
		return true, nil
	default:
		return false, fmt.Errorf("%w: got %q", ErrBadDataFormat, dataFormat)
	}
}
