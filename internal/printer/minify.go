package printer

import (
	"errors"
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
)

// ErrMinify indicates esbuild rejected the generated CSS
var ErrMinify = errors.New("failed to minify css")

// Minify compacts generated CSS with esbuild's CSS transform
func Minify(css string) (string, error) {
	result := api.Transform(css, api.TransformOptions{
		Loader:           api.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
		LogLevel:         api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		msgs := make([]error, 0, len(result.Errors))
		for _, msg := range result.Errors {
			msgs = append(msgs, errors.New(msg.Text))
		}
		return "", fmt.Errorf("%w: %w", ErrMinify, errors.Join(msgs...))
	}
	return string(result.Code), nil
}
