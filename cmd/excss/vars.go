package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"bennypowers.dev/excss/internal/stylesheet"
	cli "github.com/urfave/cli/v3"
)

// vars lists the global variables after loading every source
func vars(ctx context.Context, cmd *cli.Command) error {
	ws, err := openWorkspace(cmd)
	if err != nil {
		return err
	}
	defer ws.close()

	paths, err := ws.sources(cmd)
	if err != nil {
		return err
	}
	loadErr := ws.load(ctx, paths, nil)

	var infos []stylesheet.VariableInfo
	switch order := cmd.String("sort"); order {
	case "name":
		infos = ws.session.Variables()
	case "deps":
		if infos, err = ws.session.OrderedVariables(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown sort order %q", order)
	}
	w := cmd.Root().Writer
	if cmd.Bool("json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return loadErr
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVALUE\tKIND\tDECLARED\tUSED BY")
	for _, v := range infos {
		kind := v.Info.Category.String()
		if v.Info.Hex != "" {
			kind += " " + v.Info.Hex
		}
		usedBy := make([]string, len(v.UsedBy))
		for i, ident := range v.UsedBy {
			usedBy[i] = "$" + ident
		}
		fmt.Fprintf(tw, "$%s\t%s\t%s\t%s\t%s\n", v.Ident, v.Value, kind, v.Raw, strings.Join(usedBy, " "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	return loadErr
}
