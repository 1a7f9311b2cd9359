package workspace

import (
	"testing"

	"bennypowers.dev/excss/lsp/testutil"
	"bennypowers.dev/excss/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestDidChangeWatchedFiles(t *testing.T) {
	changed := func(uris ...string) *protocol.DidChangeWatchedFilesParams {
		params := &protocol.DidChangeWatchedFilesParams{}
		for _, uri := range uris {
			params.Changes = append(params.Changes, protocol.FileEvent{URI: uri, Type: protocol.FileChangeTypeChanged})
		}
		return params
	}
	newContext := func() *testutil.MockServerContext {
		ctx := testutil.NewMockServerContext()
		ctx.IsWorkspaceInputFunc = func(path string) bool { return path == "/ws/tokens.json" }
		ctx.SetGLSPContext(&glsp.Context{})
		require.NoError(t, ctx.DocumentManager().DidOpen("file:///ws/a.excss", "excss", 1, "a {}"))
		return ctx
	}

	t.Run("unrelated files are ignored", func(t *testing.T) {
		ctx := newContext()
		req := types.NewRequestContext(ctx, nil)
		require.NoError(t, DidChangeWatchedFiles(req, changed("file:///ws/other.txt")))
		assert.Zero(t, ctx.LoadWorkspaceCalled)
		assert.Empty(t, ctx.Published)
	})

	t.Run("inputs reload and republish", func(t *testing.T) {
		ctx := newContext()
		req := types.NewRequestContext(ctx, nil)
		require.NoError(t, DidChangeWatchedFiles(req, changed("file:///ws/other.txt", "file:///ws/tokens.json")))
		assert.Equal(t, 1, ctx.LoadWorkspaceCalled)
		assert.Equal(t, []string{"file:///ws/a.excss"}, ctx.Published)
	})
}

func TestLogMessageWithoutClient(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "failed: %d", 1)
		LogWarning(&glsp.Context{}, "careful")
		ShowMessage(nil, protocol.MessageTypeInfo, "hello")
	})
}
