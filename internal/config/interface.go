package config

import "context"

// Loader is the interface for a syntax-specific configuration loader.
type Loader interface {
	// Load reads one or more configuration files, decodes them into the
	// format-agnostic Payload, and merges them in argument order.
	Load(ctx context.Context, paths ...string) (Payload, error)
}
