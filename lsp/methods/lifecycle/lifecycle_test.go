package lifecycle

import (
	"errors"
	"testing"
	"time"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/stylesheet"
	"bennypowers.dev/excss/lsp/testutil"
	"bennypowers.dev/excss/lsp/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

func TestInitialize(t *testing.T) {
	t.Run("sets root from params.RootURI", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		rootURI := "file:///workspace"
		_, err := Initialize(types.NewRequestContext(ctx, &glsp.Context{}), &protocol.InitializeParams{RootURI: &rootURI})
		require.NoError(t, err)
		assert.Equal(t, "file:///workspace", ctx.RootURI())
		assert.Equal(t, "/workspace", ctx.RootPath())
	})

	t.Run("sets root from params.RootPath", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		rootPath := "/workspace"
		_, err := Initialize(types.NewRequestContext(ctx, &glsp.Context{}), &protocol.InitializeParams{RootPath: &rootPath})
		require.NoError(t, err)
		assert.Equal(t, "/workspace", ctx.RootPath())
		assert.Equal(t, "file:///workspace", ctx.RootURI())
	})

	t.Run("returns capabilities", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		result, err := Initialize(types.NewRequestContext(ctx, &glsp.Context{}), &protocol.InitializeParams{})
		require.NoError(t, err)

		res, ok := result.(protocol.InitializeResult)
		require.True(t, ok)
		require.NotNil(t, res.ServerInfo)
		assert.Equal(t, ServerName, res.ServerInfo.Name)
		assert.Equal(t, true, res.Capabilities.HoverProvider)

		sync, ok := res.Capabilities.TextDocumentSync.(protocol.TextDocumentSyncOptions)
		require.True(t, ok)
		assert.Equal(t, protocol.TextDocumentSyncKindIncremental, *sync.Change)
	})
}

func TestInitialized(t *testing.T) {
	t.Run("stores the context and loads the workspace", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		glspCtx := &glsp.Context{}
		req := types.NewRequestContext(ctx, glspCtx)
		require.NoError(t, Initialized(req, &protocol.InitializedParams{}))
		assert.Same(t, glspCtx, ctx.GLSPContext())
		assert.Equal(t, 1, ctx.LoadWorkspaceCalled)
	})

	t.Run("load failures are warnings", func(t *testing.T) {
		ctx := testutil.NewMockServerContext()
		ctx.LoadWorkspaceFunc = func() error { return errors.New("bad config") }
		shown := make(chan string, 1)
		req := types.NewRequestContext(ctx, &glsp.Context{
			Notify: func(method string, params any) {
				if p, ok := params.(*protocol.ShowMessageParams); ok && method == protocol.ServerWindowShowMessage {
					shown <- p.Message
				}
			},
		})
		require.NoError(t, Initialized(req, &protocol.InitializedParams{}))
		require.Len(t, req.Warnings(), 1)
		select {
		case msg := <-shown:
			assert.Contains(t, msg, "did not load cleanly")
		case <-time.After(time.Second):
			t.Fatal("no message shown")
		}
	})
}

func TestShutdown(t *testing.T) {
	ctx := testutil.NewMockServerContext()
	require.NoError(t, Shutdown(types.NewRequestContext(ctx, &glsp.Context{})))
	_, err := ctx.Session().Add("late", "a { x: 1; }", nil)
	assert.ErrorIs(t, err, stylesheet.ErrClosed)
}

func TestSetTrace(t *testing.T) {
	t.Cleanup(func() { log.SetLevel(log.LevelInfo) })
	tests := []struct {
		value protocol.TraceValue
		want  log.Level
	}{
		{protocol.TraceValueVerbose, log.LevelDebug},
		{protocol.TraceValueMessage, log.LevelInfo},
		{protocol.TraceValueOff, log.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(string(tt.value), func(t *testing.T) {
			req := types.NewRequestContext(testutil.NewMockServerContext(), &glsp.Context{})
			require.NoError(t, SetTrace(req, &protocol.SetTraceParams{Value: tt.value}))
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}
