// Package config defines the format-agnostic configuration payload and the
// Loader interface for reading it from disk. Concrete syntax adapters (YAML,
// HCL) live in their own packages; the resolver only ever sees a Payload.
package config
