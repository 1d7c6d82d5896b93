package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/pharmaweb/sitecms"
)

func runImport(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(out)
	configPath := fs.String("config", "", "Path to the YAML configuration file")
	kind := fs.String("kind", "", "Target collection: blog or news")
	dir := fs.String("dir", "", "Markdown directory (defaults to importer.content_dir)")
	pattern := fs.String("pattern", "", "Glob applied to file names (defaults to importer.pattern)")
	recursive := fs.Bool("recursive", true, "Descend into subdirectories")
	dryRun := fs.Bool("dry-run", false, "Report planned changes without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	directory := strings.TrimSpace(*dir)
	if directory == "" {
		directory = cfg.Importer.ContentDir
	}
	glob := strings.TrimSpace(*pattern)
	if glob == "" {
		glob = cfg.Importer.Pattern
	}

	module, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	result, err := module.Import(ctx, sitecms.ImportRequest{
		Kind:      sitecms.Kind(strings.ToLower(strings.TrimSpace(*kind))),
		Directory: directory,
		DryRun:    *dryRun,
		Recursive: *recursive,
		Pattern:   glob,
	})
	if result != nil {
		printResult(out, result)
	}
	if err != nil {
		return fmt.Errorf("import %s: %w", directory, err)
	}
	return nil
}

func printResult(out io.Writer, result *sitecms.ImportResult) {
	for _, outcome := range result.Outcomes {
		line := fmt.Sprintf("%-9s %s", outcome.Action, outcome.Slug)
		if outcome.Err != nil {
			line += ": " + outcome.Err.Error()
		}
		fmt.Fprintln(out, line)
	}
	prefix := ""
	if result.DryRun {
		prefix = "dry run: "
	}
	fmt.Fprintf(out, "%s%d created, %d updated, %d unchanged, %d failed\n", prefix,
		result.Count("created"), result.Count("updated"), result.Count("unchanged"), result.Count("failed"))
}
