package media

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server serves the ornament listing, the media files and the gesture
// stream.
type Server struct {
	lib    Library
	logger *slog.Logger
	router *chi.Mux
}

// NewServer routes a library. gesture may be nil, in which case the
// websocket route is not mounted.
func NewServer(lib Library, gesture http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{lib: lib, logger: logger, router: chi.NewRouter()}

	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/api/ornaments", s.handleOrnaments)
	r.Handle(OrnamentsPrefix+"*", http.StripPrefix(OrnamentsPrefix, http.FileServer(http.Dir(lib.OrnamentsDir()))))
	r.Handle(MusicPrefix+"*", http.StripPrefix(MusicPrefix, http.FileServer(http.Dir(lib.MusicDir()))))
	if gesture != nil {
		r.Get("/ws/gesture", gesture.ServeHTTP)
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type listing struct {
	Files []File `json:"files"`
	Error string `json:"error,omitempty"`
}

func (s *Server) handleOrnaments(w http.ResponseWriter, r *http.Request) {
	files, err := s.lib.Scan()
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		s.logger.Error("scan ornaments", "dir", s.lib.OrnamentsDir(), "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(listing{Files: []File{}, Error: "Failed to scan ornaments"})
		return
	}
	json.NewEncoder(w).Encode(listing{Files: files})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
