package lifecycle

import (
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/uriutil"
	"bennypowers.dev/excss/internal/version"
	"bennypowers.dev/excss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ServerName is reported to clients
const ServerName = "excss-language-server"

// Initialize handles the initialize request
func Initialize(req *types.RequestContext, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("Initializing for client: %s", clientName)

	if params.RootURI != nil {
		req.Server.SetRootURI(*params.RootURI)
		req.Server.SetRootPath(uriutil.URIToPath(*params.RootURI))
	} else if params.RootPath != nil {
		req.Server.SetRootPath(*params.RootPath)
		req.Server.SetRootURI(uriutil.PathToURI(*params.RootPath))
	}
	if root := req.Server.RootPath(); root != "" {
		log.Info("Workspace root: %s", root)
	}

	syncKind := protocol.TextDocumentSyncKindIncremental
	v := version.GetVersion()
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: boolPtr(true),
				Change:    &syncKind,
			},
			HoverProvider: true,
		},
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    ServerName,
			Version: &v,
		},
	}, nil
}

func boolPtr(b bool) *bool {
	return &b
}
