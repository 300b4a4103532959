// Package yamlcfg implements config.Loader for YAML documents. JSON files
// load through it too, since every JSON document is valid YAML.
package yamlcfg

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vk/skygridgo/internal/config"
	"github.com/vk/skygridgo/internal/ctxlog"
)

// Loader reads YAML configuration files into a config.Payload.
type Loader struct{}

// New returns a YAML loader.
func New() *Loader { return &Loader{} }

// Load implements config.Loader. Files are merged in argument order, later
// files overriding earlier ones at the top level.
func (l *Loader) Load(ctx context.Context, paths ...string) (config.Payload, error) {
	logger := ctxlog.FromContext(ctx)
	payloads := make([]config.Payload, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing config %q: %w", path, err)
		}
		logger.Debug("loaded YAML config", "path", path, "top_level_keys", len(doc))
		payloads = append(payloads, doc)
	}
	return config.Merge(payloads...), nil
}
