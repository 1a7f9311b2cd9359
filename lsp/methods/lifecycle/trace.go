package lifecycle

import (
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// SetTrace maps the client's trace value onto the log level
func SetTrace(req *types.RequestContext, params *protocol.SetTraceParams) error {
	switch params.Value {
	case protocol.TraceValueVerbose:
		log.SetLevel(log.LevelDebug)
	case protocol.TraceValueMessage:
		log.SetLevel(log.LevelInfo)
	default:
		log.SetLevel(log.LevelWarn)
	}
	log.Info("Trace level set to: %s", params.Value)
	return nil
}
