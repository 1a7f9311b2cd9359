package textDocument

import (
	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/parser"
	"bennypowers.dev/excss/lsp/types"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DidOpen tracks the document and publishes its diagnostics
func DidOpen(req *types.RequestContext, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	log.Debug("Document opened: %s (language: %s, version: %d)", doc.URI, doc.LanguageID, doc.Version)
	if err := req.Server.DocumentManager().DidOpen(doc.URI, doc.LanguageID, int(doc.Version), doc.Text); err != nil {
		return err
	}
	publish(req, doc.URI, doc.LanguageID)
	return nil
}

// DidChange applies the edits and republishes diagnostics
func DidChange(req *types.RequestContext, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, c)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: c.Text})
		}
	}
	if err := req.Server.DocumentManager().DidChange(uri, int(params.TextDocument.Version), changes); err != nil {
		return err
	}
	if doc := req.Server.Document(uri); doc != nil {
		publish(req, uri, doc.LanguageID())
	}
	return nil
}

// DidClose forgets the document
func DidClose(req *types.RequestContext, params *protocol.DidCloseTextDocumentParams) error {
	log.Debug("Document closed: %s", params.TextDocument.URI)
	return req.Server.DocumentManager().DidClose(params.TextDocument.URI)
}

func publish(req *types.RequestContext, uri, languageID string) {
	if !parser.IsSupportedLanguage(languageID) {
		return
	}
	ctx := req.Server.GLSPContext()
	if ctx == nil {
		ctx = req.GLSP
	}
	if err := req.Server.PublishDiagnostics(ctx, uri); err != nil {
		req.AddWarning(err)
	}
}
