package types

import (
	"github.com/tliron/glsp"
	"go.uber.org/multierr"
)

// RequestContext carries one handler call: the server it runs against, the
// client connection, and the non-fatal problems it ran into.
type RequestContext struct {
	Server ServerContext
	GLSP   *glsp.Context
	warn   error
}

func NewRequestContext(server ServerContext, glsp *glsp.Context) *RequestContext {
	return &RequestContext{Server: server, GLSP: glsp}
}

// AddWarning records a problem that should reach the client log without
// failing the request. Nil is ignored.
func (r *RequestContext) AddWarning(err error) {
	r.warn = multierr.Append(r.warn, err)
}

// Warnings returns the recorded problems in the order they were added
func (r *RequestContext) Warnings() []error {
	return multierr.Errors(r.warn)
}
