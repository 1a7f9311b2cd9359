package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
)

// errOutdated reports generated files that differ from a fresh build
var errOutdated = errors.New("generated files are out of date")

var dmp = diffmatchpatch.New()

func init() {
	dmp.DiffTimeout = time.Second
}

// check builds in memory and compares the result with the files on disk
func check(ctx context.Context, cmd *cli.Command) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	paths, err := ws.sources(cmd)
	if err != nil {
		return err
	}
	errs := ws.load(ctx, paths, nil)
	errs = multierr.Append(errs, ws.session.InjectAll())
	if errs != nil {
		return errs
	}

	w := cmd.Root().Writer
	color := cmd.Bool("color")
	stale := 0
	for _, sheet := range ws.sheets {
		if !compare(w, ws.cfg.OutputPath(sheet.Name), sheet.CSS(), color) {
			stale++
		}
	}
	for _, page := range ws.pages {
		if !compare(w, ws.cfg.OutputPath(page.Path), page.Render(), color) {
			stale++
		}
	}
	if stale > 0 {
		return fmt.Errorf("%w: %d of %d", errOutdated, stale, len(ws.sheets)+len(ws.pages))
	}
	fmt.Fprintf(w, "%d files up to date\n", len(ws.sheets)+len(ws.pages))
	return nil
}

// compare prints a diff from the file at path to want and reports whether
// they were equal. A missing file compares as empty.
func compare(w io.Writer, path, want string, color bool) bool {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return false
	}
	got := string(data)
	if got == want {
		return true
	}

	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(got, want, false))
	fmt.Fprintf(w, "--- %s\n+++ generated\n", path)
	if color {
		fmt.Fprintln(w, dmp.DiffPrettyText(diffs))
		return false
	}
	fmt.Fprintln(w, renderDiff(diffs))
	return false
}

// renderDiff marks deletions as [-text-] and insertions as {+text+}
func renderDiff(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}
