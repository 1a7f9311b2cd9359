// Package server exposes a stylesheet session over HTTP. Clients read the
// generated CSS and the global variables, change variables, and follow
// injections live over a WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"bennypowers.dev/excss/internal/log"
	"bennypowers.dev/excss/internal/stylesheet"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Session is the part of a stylesheet session the server uses
type Session interface {
	Stylesheets() []*stylesheet.Stylesheet
	Stylesheet(name string) (*stylesheet.Stylesheet, bool)
	Variables() []stylesheet.VariableInfo
	Variable(ident string) (stylesheet.VariableInfo, bool)
	SetVariable(ident, value string) (bool, error)
	Subscribe(fn func(stylesheet.Event)) func()
	Traits() []string
}

const (
	// queued messages per WebSocket client; a slower client misses updates
	clientQueueDepth = 16
	writeTimeout     = 10 * time.Second
	shutdownTimeout  = 5 * time.Second
)

// Server serves one session
type Server struct {
	session  Session
	router   *mux.Router
	upgrader websocket.Upgrader

	mu          sync.Mutex
	clients     map[*client]struct{}
	unsubscribe func()
}

// New creates a server and subscribes it to session's injections
func New(session Session) *Server {
	s := &Server{
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[*client]struct{}),
	}
	s.router = s.routes()
	s.unsubscribe = session.Subscribe(s.broadcast)
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/status", s.status).Methods(http.MethodGet)
	router.
		NewRoute().
		Methods(http.MethodGet).
		Path("/stylesheets").
		HandlerFunc(s.listStylesheets)
	router.
		NewRoute().
		Methods(http.MethodGet).
		Path("/stylesheets/{name:.+}").
		HandlerFunc(s.getStylesheet)
	router.
		NewRoute().
		Methods(http.MethodGet).
		Path("/variables").
		HandlerFunc(s.listVariables)
	router.
		NewRoute().
		Methods(http.MethodGet).
		Path("/variables/{ident}").
		HandlerFunc(s.getVariable)
	router.
		NewRoute().
		Methods(http.MethodPut).
		Path("/variables/{ident}").
		HandlerFunc(s.putVariable)
	router.
		NewRoute().
		Methods(http.MethodGet).
		Path("/traits").
		HandlerFunc(s.listTraits)
	router.
		NewRoute().
		Methods(http.MethodGet).
		Path("/ws").
		HandlerFunc(s.ws)
	return router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Serving on http://%s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Close unsubscribes from the session and disconnects every client
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	for c := range s.clients {
		c.close()
		delete(s.clients, c)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("Failed to write response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("excss is alive\n"))
}

func (s *Server) listTraits(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Traits())
}

type stylesheetResponse struct {
	Name string `json:"name"`
	CSS  string `json:"css"`
}

func (s *Server) listStylesheets(w http.ResponseWriter, _ *http.Request) {
	sheets := s.session.Stylesheets()
	out := make([]stylesheetResponse, 0, len(sheets))
	for _, sheet := range sheets {
		out = append(out, stylesheetResponse{Name: sheet.Name, CSS: sheet.CSS()})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getStylesheet(w http.ResponseWriter, r *http.Request) {
	sheet, ok := s.session.Stylesheet(mux.Vars(r)["name"])
	if !ok {
		errorResponse(w, http.StatusNotFound, "unknown stylesheet")
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(sheet.CSS()))
}

func (s *Server) listVariables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Variables())
}

func (s *Server) getVariable(w http.ResponseWriter, r *http.Request) {
	info, ok := s.session.Variable(mux.Vars(r)["ident"])
	if !ok {
		errorResponse(w, http.StatusNotFound, "unknown variable")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type setVariableRequest struct {
	Ident string `json:"ident"`
	Value string `json:"value"`
}

func (s *Server) putVariable(w http.ResponseWriter, r *http.Request) {
	ident := mux.Vars(r)["ident"]
	var body setVariableRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !s.setVariable(ident, body.Value) {
		errorResponse(w, http.StatusNotFound, "unknown variable")
		return
	}
	info, _ := s.session.Variable(ident)
	writeJSON(w, http.StatusOK, info)
}

// setVariable reports whether ident exists. Injection errors are logged;
// the variable keeps its new value.
func (s *Server) setVariable(ident, value string) bool {
	ok, err := s.session.SetVariable(ident, value)
	if err != nil {
		log.Warn("Injection after setting %q failed: %v", ident, err)
	}
	return ok
}
