package main

import (
	"context"

	cli "github.com/urfave/cli/v3"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/server"
	"bennypowers.dev/excss/internal/stylesheet"
	"bennypowers.dev/excss/lsp"
)

// serve loads the workspace and exposes its session over HTTP until
// interrupted. With --write, every injection also updates the output files.
func serve(ctx context.Context, cmd *cli.Command) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	paths, err := ws.sources(cmd)
	if err != nil {
		return err
	}
	var sinkFor func(string) stylesheet.Sink
	if cmd.Bool("write") {
		sinkFor = func(path string) stylesheet.Sink {
			return stylesheet.FileSink{Path: ws.cfg.OutputPath(path)}
		}
	}
	if err := ws.load(ctx, paths, sinkFor); err != nil {
		log.Warn("%v", err)
	}
	if err := ws.session.InjectAll(); err != nil {
		log.Warn("%v", err)
	}

	addr := ws.cfg.Server.Addr
	if cmd.IsSet("addr") || addr == "" {
		addr = cmd.String("addr")
	}
	srv := server.New(ws.session)
	return srv.ListenAndServe(ctx, addr)
}

// runLSP serves the language server protocol on stdio
func runLSP(_ context.Context, _ *cli.Command) error {
	s, err := lsp.NewServer()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return s.RunStdio()
}
