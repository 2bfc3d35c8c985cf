// Package web serves the editor to browsers. Each websocket connection gets
// its own editor; the page only forwards input and paints the frames it is
// sent.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"CanvasEditor/internal/config"
	"CanvasEditor/internal/store"
)

//go:embed static
var staticFiles embed.FS

type Options struct {
	Config *config.Config
	// KV persists usage events and the first-run flag. Nil disables both.
	KV       store.KV
	ShareURL string
}

type Server struct {
	cfg      *config.Config
	kv       store.KV
	shareURL string
	upgrader websocket.Upgrader
	sessions *registry
	mux      *http.ServeMux
}

func NewServer(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	s := &Server{
		cfg:      opts.Config,
		kv:       opts.KV,
		shareURL: opts.ShareURL,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 64 << 10,
		},
		sessions: newRegistry(),
		mux:      http.NewServeMux(),
	}

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	s.mux.Handle("GET /", http.FileServerFS(static))
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /api/info", s.handleInfo)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

// Sessions is the number of connected browsers.
func (s *Server) Sessions() int { return s.sessions.Count() }

// ListenAndServe serves on the configured address until ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		log.Printf("[WEB] Listening on %s", s.cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WEB] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	sess := newSession(s, conn)
	s.sessions.Add(sess, r.RemoteAddr)
	defer s.sessions.Remove(sess)

	if err := sess.run(r.Context()); err != nil {
		log.Printf("[WEB] Session %s ended: %v", sess.ID(), err)
	}
}

type info struct {
	ShareURL string `json:"shareURL"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, info{ShareURL: s.shareURL, Sessions: s.sessions.Count()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := store.NewEventLog(s.kv, "").Events()
	if events == nil {
		events = []store.Event{}
	}
	writeJSON(w, events)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WEB] Encode response: %v", err)
	}
}

// registry tracks live sessions.
type registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[string]*Session)}
}

func (r *registry) Add(s *Session, remote string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
	log.Printf("[WEB] Session %s connected from %s", s.ID(), remote)
}

func (r *registry) Remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, s.ID())
	log.Printf("[WEB] Session %s disconnected", s.ID())
}

func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
