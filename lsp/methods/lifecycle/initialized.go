package lifecycle

import (
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/lsp/methods/workspace"
	"bennypowers.dev/excss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Initialized stores the client context and loads the workspace. A
// workspace that fails to load is reported but does not fail the handshake.
func Initialized(req *types.RequestContext, params *protocol.InitializedParams) error {
	log.Info("Server initialized")
	req.Server.SetGLSPContext(req.GLSP)
	if err := req.Server.LoadWorkspace(); err != nil {
		req.AddWarning(err)
		workspace.ShowMessage(req.GLSP, protocol.MessageTypeWarning,
			"excss: the workspace did not load cleanly, see the output log")
	}
	return nil
}
