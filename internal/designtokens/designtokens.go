// Package designtokens reads DTCG design token files and flattens them into
// ExCSS global variables.
package designtokens

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	asimonimParser "bennypowers.dev/asimonim/parser"
	"bennypowers.dev/asimonim/resolver"
	"bennypowers.dev/asimonim/schema"
	"bennypowers.dev/asimonim/token"
	"bennypowers.dev/excss/internal/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a token file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor guesses a format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Options controls how tokens are named and parsed.
type Options struct {
	// Prefix is prepended to every variable name, joined with "-".
	Prefix string
	// GroupMarkers are token names that may act as both a token and a group.
	GroupMarkers []string
	// SchemaVersion forces a DTCG schema version. Zero detects it.
	SchemaVersion schema.Version
}

// Entry is one design token expressed as an ExCSS variable.
type Entry struct {
	Ident string
	Value string
	Type  string
}

// Parse decodes token data and returns the resolved entries sorted by ident.
func Parse(data []byte, format Format, opts Options) ([]Entry, error) {
	var payload []byte
	switch format {
	case FormatYAML:
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML tokens: %w", err)
		}
		payload = b
	default:
		payload = jsonc.ToJSON(data)
	}

	tokens, err := asimonimParser.NewJSONParser().Parse(payload, asimonimParser.Options{
		SchemaVersion: opts.SchemaVersion,
		GroupMarkers:  opts.GroupMarkers,
		SkipSort:      true,
	})
	if err != nil {
		return nil, err
	}

	version := opts.SchemaVersion
	if version == schema.Unknown {
		version = schema.Draft
		for _, t := range tokens {
			if t.SchemaVersion != schema.Unknown {
				version = t.SchemaVersion
				break
			}
		}
	}
	if err := resolver.ResolveAliases(tokens, version); err != nil {
		log.Warn("Failed to resolve token aliases: %v", err)
	}

	entries := make([]Entry, 0, len(tokens))
	for _, t := range tokens {
		entries = append(entries, Entry{
			Ident: Ident(opts.Prefix, t),
			Value: valueOf(t),
			Type:  t.Type,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Ident < entries[j].Ident })
	return entries, nil
}

// Load reads a token file from disk.
func Load(path string, opts Options) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := Parse(data, FormatFor(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info("Loaded %d design tokens from %s", len(entries), path)
	return entries, nil
}

// Ident returns the variable identifier for a token, e.g. "$ds-color-primary".
func Ident(prefix string, t *token.Token) string {
	name := strings.Join(t.Path, "-")
	if name == "" {
		name = t.Name
	}
	name = strings.ReplaceAll(name, ".", "-")
	if prefix != "" {
		name = strings.ReplaceAll(prefix, ".", "-") + "-" + name
	}
	return "$" + name
}

func valueOf(t *token.Token) string {
	var resolved any = t.ResolvedValue
	if t.IsResolved && resolved != nil {
		switch v := resolved.(type) {
		case string:
			return v
		case fmt.Stringer:
			return v.String()
		default:
			if b, err := json.Marshal(v); err == nil {
				return string(b)
			}
		}
	}
	return t.Value
}
