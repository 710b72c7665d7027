package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jpalmerr/syncboard/internal/store"
	"github.com/jpalmerr/syncboard/table"
)

const (
	// defaultTitle is used when no custom title is configured.
	defaultTitle = "SyncBoard"

	// indexPath is the page template inside the assets filesystem.
	indexPath = "assets/index.html"

	shutdownTimeout = 5 * time.Second
)

// Page configures the dashboard page.
type Page struct {
	// Title defaults to "SyncBoard" if empty.
	Title string

	// Refresh is how often the browser reloads the page. Zero disables it.
	Refresh time.Duration

	// Tables are shown in order.
	Tables []table.Layout
}

// Server handles HTTP requests for the dashboard and its JSON API.
//
// Server provides three endpoints:
//   - GET /: the dashboard page rendered from the embedded template
//   - GET /api/tables: every published table as JSON
//   - GET /api/tables/{name}: one table as JSON, 404 for unknown names
//
// The page has no push channel; it reloads itself every [Page.Refresh].
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	store      store.Store
	port       int
	httpServer *http.Server
	assets     fs.FS
	page       Page
	logger     *slog.Logger

	// tmpl is parsed once by NewServer. tmplErr holds the reason it is nil.
	tmpl    *template.Template
	tmplErr error
}

// NewServer creates a new HTTP [Server].
//
// Parameters:
//   - st: Store holding the published tables
//   - port: TCP port to listen on
//   - assets: Embedded filesystem containing assets/index.html (may be nil)
//   - page: Title, refresh period and table layout of the dashboard
//   - logger: Logger for server events
//
// The page template is parsed here. A missing or invalid template does not
// fail construction; GET / answers 500 instead and the JSON API still works.
// The server is not started until [Server.Start] is called.
func NewServer(st store.Store, port int, assets fs.FS, page Page, logger *slog.Logger) *Server {
	if page.Title == "" {
		page.Title = defaultTitle
	}
	s := &Server{
		store:  st,
		port:   port,
		assets: assets,
		page:   page,
		logger: logger,
	}
	s.tmpl, s.tmplErr = parseIndex(assets)
	if s.tmplErr != nil && assets != nil {
		logger.Error("failed to load dashboard template", "error", s.tmplErr)
	}
	return s
}

var errNoAssets = errors.New("no dashboard assets")

// parseIndex reads and parses the page template.
func parseIndex(assets fs.FS) (*template.Template, error) {
	if assets == nil {
		return nil, errNoAssets
	}
	content, err := fs.ReadFile(assets, indexPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", indexPath, err)
	}
	// html/template escapes the title and every cell
	tmpl, err := template.New("index").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", indexPath, err)
	}
	return tmpl, nil
}

// Handler returns the request router.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tables", s.handleTables)
	mux.HandleFunc("GET /api/tables/{name}", s.handleTable)
	mux.HandleFunc("/", s.handleDashboard)
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

type pageView struct {
	Title          string
	RefreshSeconds int
	Tables         []tableView
}

type tableView struct {
	Name      string
	Heading   string
	Columns   []string
	Rows      []table.Row
	UpdatedAt time.Time
}

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.tmpl == nil {
		if errors.Is(s.tmplErr, errNoAssets) || errors.Is(s.tmplErr, fs.ErrNotExist) {
			http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		} else {
			http.Error(w, "Dashboard template invalid", http.StatusInternalServerError)
		}
		return
	}

	view := pageView{
		Title:          s.page.Title,
		RefreshSeconds: int(s.page.Refresh.Round(time.Second) / time.Second),
		Tables:         make([]tableView, 0, len(s.page.Tables)),
	}
	for _, layout := range s.page.Tables {
		tv := tableView{Name: layout.Name, Heading: layout.Heading, Columns: layout.Columns}
		if snap, ok := s.store.Get(layout.Name); ok {
			tv.Rows = snap.Rows
			tv.UpdatedAt = snap.UpdatedAt
		}
		view.Tables = append(view.Tables, tv)
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, view); err != nil {
		s.logger.Error("failed to render dashboard", "error", err)
		http.Error(w, "Dashboard render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}

// handleTables returns every published table as JSON.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.store.GetAll())
}

// handleTable returns one published table as JSON.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	snap, ok := s.store.Get(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown table %q", name), http.StatusNotFound)
		return
	}
	s.writeJSON(w, snap)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode table response", "error", err)
	}
}
