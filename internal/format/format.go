// Package format defines the canonical (epoch, extent, data_format) triple
// that classifies every dataset the resolver knows about, together with the
// enumerated domains for each classification axis. The triple's canonical
// string key ("epoch-extent-data_format") is the table key used everywhere
// else in the engine.
package format

import (
	"fmt"
	"strings"
)

// Epoch values distinguish time-series data from single-pass data.
const (
	EpochSingle     = "single"
	EpochCoadd      = "coadd"
	EpochMultiepoch = "multiepoch"
)

// Epochs is the enumerated domain for the epoch axis.
var Epochs = []string{EpochSingle, EpochCoadd, EpochMultiepoch}

// Extents is the enumerated domain for the extent axis, ordered roughly by
// sky area. The terms follow common survey-pipeline usage.
var Extents = []string{"CCD", "field", "patch", "tract"}

// DataFormats is the enumerated domain for the data_format axis.
var DataFormats = []string{"catalog", "image"}

// ObjectTypes is the set of object types the engine recognizes as axis keys
// in a nested configuration. Object types outside this set are still legal
// descriptor values; they just cannot be used as implicit axis keys.
var ObjectTypes = []string{
	"galaxy",
	"galaxy lens",
	"galaxy random",
	"star",
	"star PSF",
	"star bright",
	"star random",
}

// Axis names, in the fixed priority order the normalizer consumes them.
const (
	KeyEpoch      = "epoch"
	KeyExtent     = "extent"
	KeyDataFormat = "data_format"
	KeyObjectType = "object_type"
)

// AxisSpec pairs a classification axis with its enumerated domain.
type AxisSpec struct {
	Name   string
	Domain []string
}

// Axes lists the four classification axes in consumption priority order.
var Axes = []AxisSpec{
	{KeyEpoch, Epochs},
	{KeyExtent, Extents},
	{KeyDataFormat, DataFormats},
	{KeyObjectType, ObjectTypes},
}

// Contains reports whether key is a member of the axis domain.
func (a AxisSpec) Contains(key string) bool {
	for _, v := range a.Domain {
		if v == key {
			return true
		}
	}
	return false
}

// Format is an immutable classification triple. Two formats are equal iff
// their canonical keys are equal.
type Format struct {
	Epoch      string
	Extent     string
	DataFormat string
}

// New builds a Format from its three components.
func New(epoch, extent, dataFormat string) Format {
	return Format{Epoch: epoch, Extent: extent, DataFormat: dataFormat}
}

// Key returns the canonical hyphen-spliced string key.
func (f Format) Key() string {
	return f.Epoch + "-" + f.Extent + "-" + f.DataFormat
}

// String implements fmt.Stringer.
func (f Format) String() string { return f.Key() }

// Multiepoch reports whether the format describes a correlated multi-file set.
func (f Format) Multiepoch() bool { return f.Epoch == EpochMultiepoch }

// Parse splits a canonical key back into a Format.
func Parse(key string) (Format, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return Format{}, fmt.Errorf("format key must have three hyphen-separated components, got %q", key)
	}
	for i, p := range parts {
		if p == "" {
			return Format{}, fmt.Errorf("format key %q has an empty component at position %d", key, i)
		}
	}
	return Format{Epoch: parts[0], Extent: parts[1], DataFormat: parts[2]}, nil
}

// Canonical turns a caller-supplied format specification into the canonical
// key. The epoch argument may be a Format, an already-canonical key, or a
// bare epoch accompanied by extent and dataFormat. Supplying extent or
// dataFormat alongside a pre-built triple is rejected as a double
// specification.
func Canonical(epoch any, extent, dataFormat string) (string, error) {
	switch e := epoch.(type) {
	case Format:
		if extent != "" || dataFormat != "" {
			return "", fmt.Errorf("format given both as a triple %q and as components (%q, %q)", e.Key(), extent, dataFormat)
		}
		return e.Key(), nil
	case string:
		if extent == "" && dataFormat == "" {
			// Either a full canonical key, or a bare epoch with the rest
			// missing; only the former is acceptable here. User-defined axis
			// values pass through, so the key is only checked for shape.
			if strings.Count(e, "-") < 2 {
				return "", fmt.Errorf("incomplete format specification %q", e)
			}
			return e, nil
		}
		if strings.Contains(e, "-") {
			return "", fmt.Errorf("format given both as key %q and as components (%q, %q)", e, extent, dataFormat)
		}
		if extent == "" || dataFormat == "" {
			return "", fmt.Errorf("incomplete format specification: epoch=%q extent=%q data_format=%q", e, extent, dataFormat)
		}
		return New(e, extent, dataFormat).Key(), nil
	case fmt.Stringer:
		return Canonical(e.String(), extent, dataFormat)
	default:
		return "", fmt.Errorf("epoch must be a string or format.Format, got %T", epoch)
	}
}
