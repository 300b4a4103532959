package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/skygridgo/internal/config"
	"github.com/vk/skygridgo/internal/ctxlog"
	"github.com/vk/skygridgo/internal/fsutil"
	"github.com/vk/skygridgo/internal/hclcfg"
	"github.com/vk/skygridgo/internal/yamlcfg"
)

// configExtensions are the file suffixes the loader recognizes, each mapped
// to the syntax adapter that reads it. JSON rides on the YAML loader.
var configExtensions = []string{".yaml", ".yml", ".json", ".hcl"}

// loadPayload expands the configured paths into concrete files, loads each
// through the adapter its extension selects, and merges the results in path
// order.
func loadPayload(ctx context.Context, paths []string) (config.Payload, error) {
	logger := ctxlog.FromContext(ctx)
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no configuration files found under %v", paths)
	}
	logger.Debug("configuration files located", "count", len(files))

	yaml := yamlcfg.New()
	hcl := hclcfg.New()
	payloads := make([]config.Payload, 0, len(files))
	for _, file := range files {
		var loader config.Loader = yaml
		if strings.EqualFold(filepath.Ext(file), ".hcl") {
			loader = hcl
		}
		p, err := loader.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return config.Merge(payloads...), nil
}

// expandPaths resolves each argument to concrete config files. A directory
// contributes every recognized file beneath it, in sorted order; a file is
// taken as given.
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("configuration path %q: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, configExtensions...)
		if err != nil {
			return nil, fmt.Errorf("scanning %q: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}
