package app

import (
	"context"
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/vk/skygridgo/internal/ctxlog"
	"github.com/vk/skygridgo/internal/model"
	"github.com/vk/skygridgo/internal/readers"
)

// Run executes the requested action: a file lookup, a raw table dump, or the
// default resolution report.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("run started")

	switch {
	case a.config.Query != "":
		return a.runQuery(a.config.Query)
	case a.config.Dump:
		fmt.Fprint(a.outW, spew.Sdump(a.resolver.Files()))
		fmt.Fprint(a.outW, spew.Sdump(a.resolver.Groups()))
		return nil
	default:
		return a.report()
	}
}

// runQuery prints every place one file name occurs in the resolved tables.
func (a *App) runQuery(name string) error {
	occurrences := a.resolver.QueryFile(name)
	if len(occurrences) == 0 {
		fmt.Fprintf(a.outW, "%s: not referenced by the configuration\n", name)
		return nil
	}
	for _, occ := range occurrences {
		fmt.Fprintf(a.outW, "%s: %s / %s [%d]", name, occ.Format, occ.ObjectType, occ.Index)
		if len(occ.Descriptor.Group.Names) > 0 {
			fmt.Fprintf(a.outW, " groups=%v", occ.Descriptor.Group.Names)
		}
		fmt.Fprintln(a.outW)
	}
	return nil
}

// report prints the resolution summary: every format with its object types
// and files, the reader each file resolves to, the surviving groups, and the
// analysis tests attached to each format with their planned output paths.
func (a *App) report() error {
	for _, formatKey := range a.resolver.ListFileTypes() {
		fmt.Fprintf(a.outW, "format %s\n", formatKey)
		objects, err := a.resolver.ListObjects(formatKey, "", "")
		if err != nil {
			return err
		}
		for _, objectType := range objects {
			descs, err := a.resolver.ListData(objectType, formatKey, "", "")
			if err != nil {
				return err
			}
			fmt.Fprintf(a.outW, "  %s (%d)\n", objectType, len(descs))
			for _, d := range descs {
				plan, err := readers.Resolve(d.FileReader, d.Format.DataFormat, firstName(d))
				if err != nil {
					return fmt.Errorf("reader for %s: %w", d, err)
				}
				fmt.Fprintf(a.outW, "    %s via %s", d, plan)
				if len(d.BinList) > 0 {
					fmt.Fprintf(a.outW, " bins=%v", d.BinList)
				}
				fmt.Fprintln(a.outW)
			}
		}
		for _, t := range a.tests[formatKey] {
			out, err := a.namer.Path(t.Kind+t.Type, formatKey, ".txt")
			if err != nil {
				return err
			}
			fmt.Fprintf(a.outW, "  test %s -> %s\n", t, out)
		}
	}

	for _, name := range a.resolver.GroupNames() {
		fmt.Fprintf(a.outW, "group %s: %v\n", name, a.resolver.Groups()[name])
	}
	return nil
}

// firstName picks a representative concrete file name for reader inference.
func firstName(d *model.Descriptor) string {
	switch v := d.Name.(type) {
	case string:
		return v
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok {
				return s
			}
		}
	}
	return ""
}
