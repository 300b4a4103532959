// Package model defines the resolved data structures the engine produces:
// the Descriptor (one fully-specified data source) and its grouping state.
// The raw nested configuration never appears here; by the time a value
// becomes a Descriptor every classification axis is bound.
package model
