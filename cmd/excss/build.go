package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/stylesheet"
)

// errInPlace is returned for an HTML page whose output would replace it
var errInPlace = errors.New("refusing to overwrite source page, configure an output directory")

func build(ctx context.Context, cmd *cli.Command) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	paths, err := ws.sources(cmd)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		log.Warn("No sources matched %v", ws.cfg.Sources)
		return nil
	}

	errs := ws.load(ctx, paths, func(path string) stylesheet.Sink {
		return stylesheet.FileSink{Path: ws.cfg.OutputPath(path)}
	})
	errs = multierr.Append(errs, ws.session.InjectAll())
	for _, page := range ws.pages {
		errs = multierr.Append(errs, writePage(ws, page))
	}

	for _, sheet := range ws.sheets {
		fmt.Fprintf(cmd.Root().Writer, "%s -> %s\n", sheet.Name, ws.cfg.OutputPath(sheet.Name))
	}
	for _, page := range ws.pages {
		fmt.Fprintf(cmd.Root().Writer, "%s -> %s\n", page.Path, ws.cfg.OutputPath(page.Path))
	}
	return errs
}

func writePage(ws *workspace, page *stylesheet.Page) error {
	out := ws.cfg.OutputPath(page.Path)
	if filepath.Clean(out) == filepath.Clean(page.Path) {
		return fmt.Errorf("%s: %w", page.Path, errInPlace)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	return os.WriteFile(out, []byte(page.Render()), 0o644)
}
