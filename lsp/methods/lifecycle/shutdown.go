package lifecycle

import (
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/lsp/types"
)

// Shutdown handles the shutdown request
func Shutdown(req *types.RequestContext) error {
	log.Info("Server shutting down")
	return req.Server.Session().Close()
}
