package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	cli "github.com/urfave/cli/v3"

	"bennypowers.dev/excss/internal/config"
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/version"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:            "excss",
		Usage:           "compile ExCSS stylesheets to CSS",
		Version:         version.GetFullVersion(),
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML or JSON)", Sources: cli.EnvVars("EXCSS_CONFIG")},
			&cli.StringFlag{Name: "log-level", Usage: "minimum log `LEVEL` (debug, info, warn, error)", Sources: cli.EnvVars("EXCSS_LOG_LEVEL")},
			&cli.BoolFlag{Name: "instrument", Usage: "log how long each load, parse and injection takes"},
			&cli.BoolFlag{Name: "minify", Usage: "minify generated CSS"},
			&cli.BoolFlag{Name: "validate", Usage: "report generated CSS that does not parse"},
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Writes the CSS of every source",
				ArgsUsage: "[SOURCE...]",
				Action:    build,
			},
			{
				Name:      "check",
				Usage:     "Fails when generated files differ from a fresh build",
				ArgsUsage: "[SOURCE...]",
				Action:    check,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "color", Usage: "colorize the diff"},
				},
			},
			{
				Name:      "dump",
				Usage:     "Prints the parse object of a stylesheet",
				ArgsUsage: "FILE",
				Action:    dump,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json",
						Usage: "output `FORMAT` (" + strings.Join(dumpFormats, ", ") + ")"},
				},
			},
			{
				Name:      "vars",
				Usage:     "Lists the global variables",
				ArgsUsage: "[SOURCE...]",
				Action:    vars,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print JSON"},
					&cli.StringFlag{Name: "sort", Value: "name", Usage: "order by `name` or by dependencies (deps)"},
				},
			},
			{
				Name:      "serve",
				Usage:     "Serves stylesheets and variables over HTTP and WebSocket",
				ArgsUsage: "[SOURCE...]",
				Action:    serve,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: config.DefaultAddr, Usage: "listen on `ADDRESS`"},
					&cli.BoolFlag{Name: "write", Usage: "write output files on every injection"},
				},
			},
			{
				Name:   "lsp",
				Usage:  "Runs the language server on stdio",
				Action: runLSP,
			},
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().Run(ctx, os.Args)
	stop()
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
