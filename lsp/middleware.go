package lsp

import (
	"fmt"
	"runtime/debug"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/lsp/methods/workspace"
	"bennypowers.dev/excss/lsp/types"
	"github.com/tliron/glsp"
)

// call runs an LSP handler with panic recovery, logging and error wrapping
func call[R any](req *types.RequestContext, methodName string, handler func() (R, error)) (result R, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("PANIC in %s: %v\n%s", methodName, r, debug.Stack())
			workspace.LogError(req.GLSP, "Internal error in %s: %v", methodName, r)
			var zero R
			result, err = zero, fmt.Errorf("internal error in %s", methodName)
		}
	}()

	log.Debug("%s started", methodName)
	result, err = handler()
	for _, w := range req.Warnings() {
		workspace.LogWarning(req.GLSP, "%s: %v", methodName, w)
	}
	if err != nil {
		workspace.LogError(req.GLSP, "%s: %v", methodName, err)
		return result, fmt.Errorf("%s: %w", methodName, err)
	}
	log.Debug("%s completed", methodName)
	return result, nil
}

// method wraps a request handler
func method[P, R any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) (R, error),
) func(*glsp.Context, P) (R, error) {
	return func(ctx *glsp.Context, params P) (R, error) {
		req := types.NewRequestContext(s, ctx)
		return call(req, methodName, func() (R, error) { return handler(req, params) })
	}
}

// notify wraps a notification handler
func notify[P any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) error,
) func(*glsp.Context, P) error {
	return func(ctx *glsp.Context, params P) error {
		req := types.NewRequestContext(s, ctx)
		_, err := call(req, methodName, func() (struct{}, error) { return struct{}{}, handler(req, params) })
		return err
	}
}

// noParam wraps a handler without params, like shutdown
func noParam(
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext) error,
) func(*glsp.Context) error {
	return func(ctx *glsp.Context) error {
		req := types.NewRequestContext(s, ctx)
		_, err := call(req, methodName, func() (struct{}, error) { return struct{}{}, handler(req) })
		return err
	}
}
