package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/claude/healthlens/internal/ingest/csvfile"
	"github.com/claude/healthlens/internal/ingest/manual"
	"github.com/claude/healthlens/internal/store"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   *store.Store
	csv     *csvfile.Provider
	manual  *manual.Provider
	version string
	log     *slog.Logger
	router  chi.Router
	whois   WhoIsClient
	now     func() time.Time
}

// New creates a new Server with all routes configured.
func New(st *store.Store, csvProvider *csvfile.Provider, manualProvider *manual.Provider, version string, log *slog.Logger) *Server {
	s := &Server{
		store:   st,
		csv:     csvProvider,
		manual:  manualProvider,
		version: version,
		log:     log,
		router:  chi.NewRouter(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/upload/csv", s.handleUploadCSV)

		r.Get("/summary", s.handleSummary)
		r.Get("/insights", s.handleInsights)
		r.Get("/trends", s.handleTrends)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/latest", s.handleLatestAnalysis)
		r.Get("/analyses/{id}", s.handleGetAnalysis)
		r.Get("/me", s.handleMe)
	})
}

// SetMCP mounts an MCP transport handler at /mcp.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// SetTailscale enables caller identification through the tailnet.
func (s *Server) SetTailscale(c WhoIsClient) {
	s.whois = c
}
