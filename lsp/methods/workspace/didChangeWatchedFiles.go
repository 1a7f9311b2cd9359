package workspace

import (
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/uriutil"
	"bennypowers.dev/excss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidChangeWatchedFiles reloads the workspace when one of its inputs changes
// and republishes diagnostics for the open documents
func DidChangeWatchedFiles(req *types.RequestContext, params *protocol.DidChangeWatchedFilesParams) error {
	reload := false
	for _, change := range params.Changes {
		path := uriutil.URIToPath(change.URI)
		log.Debug("File change: %s (type: %d)", path, change.Type)
		if req.Server.IsWorkspaceInput(path) {
			reload = true
		}
	}
	if !reload {
		return nil
	}

	log.Info("Reloading workspace")
	if err := req.Server.LoadWorkspace(); err != nil {
		req.AddWarning(err)
	}

	ctx := req.Server.GLSPContext()
	if ctx == nil {
		return nil
	}
	for _, doc := range req.Server.AllDocuments() {
		if err := req.Server.PublishDiagnostics(ctx, doc.URI()); err != nil {
			req.AddWarning(err)
		}
	}
	return nil
}
