// Package hclcfg implements config.Loader for HCL documents. Attributes map
// to payload keys; blocks nest, with each label adding one mapping level, so
//
//	file "galaxy" { name = "g.fits" }
//
// decodes to the same payload shape a YAML author would write by hand.
package hclcfg

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/vk/skygridgo/internal/config"
	"github.com/vk/skygridgo/internal/ctxlog"
)

// Loader reads HCL configuration files into a config.Payload.
type Loader struct{}

// New returns an HCL loader.
func New() *Loader { return &Loader{} }

// Load implements config.Loader. Files are merged in argument order, later
// files overriding earlier ones at the top level.
func (l *Loader) Load(ctx context.Context, paths ...string) (config.Payload, error) {
	logger := ctxlog.FromContext(ctx)
	parser := hclparse.NewParser()
	payloads := make([]config.Payload, 0, len(paths))
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
		file, diags := parser.ParseHCL(src, path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing config %q: %w", path, diags)
		}
		body, ok := file.Body.(*hclsyntax.Body)
		if !ok {
			return nil, fmt.Errorf("parsing config %q: unexpected body type %T", path, file.Body)
		}
		doc, err := decodeBody(body)
		if err != nil {
			return nil, fmt.Errorf("decoding config %q: %w", path, err)
		}
		logger.Debug("loaded HCL config", "path", path, "top_level_keys", len(doc))
		payloads = append(payloads, doc)
	}
	return config.Merge(payloads...), nil
}

// decodeBody flattens one HCL body into plain Go values. Expressions are
// evaluated without an EvalContext; the configuration language here is pure
// data, not templating.
func decodeBody(body *hclsyntax.Body) (map[string]any, error) {
	out := map[string]any{}
	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating attribute %q: %w", name, diags)
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		out[name] = native
	}
	for _, block := range body.Blocks {
		inner, err := decodeBody(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", block.Type, err)
		}
		var node any = inner
		for i := len(block.Labels) - 1; i >= 0; i-- {
			node = map[string]any{block.Labels[i]: node}
		}
		insert(out, block.Type, node)
	}
	return out, nil
}

// insert adds a decoded block under its type key. Blocks with distinct
// labels deep-merge into one mapping; repeated unlabeled blocks accumulate
// into a list.
func insert(out map[string]any, key string, v any) {
	existing, ok := out[key]
	if !ok {
		out[key] = v
		return
	}
	if em, eok := existing.(map[string]any); eok {
		if vm, vok := v.(map[string]any); vok {
			for k, val := range vm {
				insert(em, k, val)
			}
			return
		}
	}
	if list, isList := existing.([]any); isList {
		out[key] = append(list, v)
		return
	}
	out[key] = []any{existing, v}
}
