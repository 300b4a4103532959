package resolve

import "errors"

// The resolution error taxonomy. Every failure aborts construction of the
// whole table set; there is no partial recovery, since a partially-resolved
// table could silently drop an analysis the configuration asked for.
var (
	// ErrIncompleteSpec: a descriptor reached the leaf stage with a
	// classification axis still unbound.
	ErrIncompleteSpec = errors.New("incomplete definition")

	// ErrDuplicateSpec: a classification axis was bound at two nesting
	// levels at once.
	ErrDuplicateSpec = errors.New("duplicate definition")

	// ErrAmbiguousShape: a multiepoch or wildcard expansion met a mixed
	// iterable/non-iterable sibling set it cannot disambiguate.
	ErrAmbiguousShape = errors.New("ambiguous shape")

	// ErrGroupConflict: a group name spans two formats, or names the same
	// (format, object_type) twice.
	ErrGroupConflict = errors.New("group conflict")

	// ErrUnprocessedKeys: leftover mapping keys that match no control key,
	// classification axis, or terminal name shape.
	ErrUnprocessedKeys = errors.New("unprocessed keys")

	// ErrGroupedBins: a descriptor carries both a bin specification and a
	// cross-object-type group tag; binning before grouping is undefined.
	ErrGroupedBins = errors.New("grouped descriptor carries a bin specification")

	// ErrInvalidValue: a control key holds a value of the wrong shape.
	ErrInvalidValue = errors.New("invalid value")
)
