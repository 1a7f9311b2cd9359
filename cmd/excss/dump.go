package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	cli "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/excss/internal/grammar"
	"bennypowers.dev/excss/internal/parseobject"
	"bennypowers.dev/excss/internal/translator"
)

// dumpFormats are the values of dump --format
var dumpFormats = []string{"json", "yaml", "embed", "walk"}

func readInput(cmd *cli.Command) (string, error) {
	name := cmd.Args().First()
	if name == "" {
		return "", errors.New("no input file has been specified")
	}
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(cmd.Root().Reader)
	} else {
		data, err = os.ReadFile(name)
	}
	return string(data), err
}

// dump prints the parse object of a stylesheet, the stylesheet with its
// parse object embedded, or every typed node the grammar produced
func dump(_ context.Context, cmd *cli.Command) error {
	text, err := readInput(cmd)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer

	format := cmd.String("format")
	if format == "walk" {
		return walk(w, text)
	}

	po, err := parseobject.Parse(text)
	if err != nil {
		return err
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(po)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(po)
	case "embed":
		markup, _, _ := parseobject.ExtractEmbedded(text)
		out, err := parseobject.Embed(strings.TrimPrefix(markup, "\n"), po)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format %q, expected one of %v", format, dumpFormats)
	}
}

// walk prints each typed node in the order the translator visits it. An
// embedded parse object is skipped.
func walk(w io.Writer, text string) error {
	markup, _, _ := parseobject.ExtractEmbedded(text)
	root := grammar.Parse(parseobject.StripComments(markup))
	translator.Walk(root, translator.HandlerFunc(func(kind grammar.Kind, content string) {
		fmt.Fprintf(w, "%s: %q\n", kind, content)
	}))
	if rest := strings.TrimSpace(root.Remainder); rest != "" {
		return fmt.Errorf("unparsed input: %q", rest)
	}
	return nil
}
