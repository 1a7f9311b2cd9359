package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"

	"bennypowers.dev/excss/internal/config"
	"bennypowers.dev/excss/internal/designtokens"
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/stylesheet"
)

// workspace is a configured session together with the inputs it was loaded
// from
type workspace struct {
	cfg     *config.Config
	session *stylesheet.Session
	sheets  []*stylesheet.Stylesheet
	pages   []*stylesheet.Page
}

// loadConfig reads --config, or searches the working directory. Global flags
// that were given explicitly override the file.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := cmd.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		var wd string
		if wd, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("unable to get working directory: %w", err)
		}
		cfg, err = config.FindOrDefault(wd)
	}
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("minify") {
		cfg.Minify = cmd.Bool("minify")
	}
	if cmd.IsSet("validate") {
		cfg.Validate = cmd.Bool("validate")
	}
	if cmd.IsSet("instrument") {
		cfg.Instrument = cmd.Bool("instrument")
	}
	if cmd.IsSet("log-level") {
		cfg.LogLevel = cmd.String("log-level")
	}
	if cfg.LogLevel != "" {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		log.SetLevel(level)
	}
	return cfg, nil
}

// openWorkspace creates a session seeded with the configured design tokens
func openWorkspace(cmd *cli.Command) (*workspace, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	session, err := stylesheet.NewSession(stylesheet.Options{
		Instrument: cfg.Instrument,
		Minify:     cfg.Minify,
		Validate:   cfg.Validate,
	})
	if err != nil {
		return nil, err
	}
	for _, tf := range cfg.Tokens {
		entries, err := designtokens.Load(cfg.TokenPath(tf), designtokens.Options{
			Prefix:       tf.Prefix,
			GroupMarkers: tf.GroupMarkers,
		})
		if err != nil {
			_ = session.Close()
			return nil, err
		}
		for _, e := range entries {
			if err := session.Define(strings.TrimPrefix(e.Ident, "$"), e.Value); err != nil {
				log.Warn("%s: %v", tf.Path, err)
			}
		}
		log.Debug("Loaded %d tokens from %s", len(entries), tf.Path)
	}
	return &workspace{cfg: cfg, session: session}, nil
}

// sources returns the command's arguments, or the configured sources when
// there are none
func (ws *workspace) sources(cmd *cli.Command) ([]string, error) {
	if cmd.NArg() == 0 {
		return ws.cfg.ResolveSources()
	}
	paths := make([]string, 0, cmd.NArg())
	for _, arg := range cmd.Args().Slice() {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, abs)
	}
	return paths, nil
}

func isHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// load reads every source into the session. sinkFor chooses the sink of an
// .excss source; HTML pages render from memory.
func (ws *workspace) load(ctx context.Context, paths []string, sinkFor func(path string) stylesheet.Sink) error {
	var sources []stylesheet.Source
	var pages []string
	for _, path := range paths {
		if isHTML(path) {
			pages = append(pages, path)
			continue
		}
		src := stylesheet.Source{Path: path}
		if sinkFor != nil {
			src.Sink = sinkFor(path)
		}
		sources = append(sources, src)
	}

	sheets, errs := ws.session.LoadAll(ctx, sources)
	for _, sheet := range sheets {
		if sheet != nil {
			ws.sheets = append(ws.sheets, sheet)
		}
	}
	for _, path := range pages {
		page, err := ws.session.LoadHTML(ctx, path, nil)
		errs = multierr.Append(errs, err)
		if page != nil {
			ws.pages = append(ws.pages, page)
		}
	}
	return errs
}

func (ws *workspace) close() {
	_ = ws.session.Close()
}
