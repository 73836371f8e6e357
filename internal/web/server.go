package web

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/vbonduro/portfolio/internal/auth"
	"github.com/vbonduro/portfolio/internal/config"
	"github.com/vbonduro/portfolio/internal/dialog"
	"github.com/vbonduro/portfolio/internal/filter"
	"github.com/vbonduro/portfolio/internal/logging"
	"github.com/vbonduro/portfolio/internal/page"
	"github.com/vbonduro/portfolio/internal/photostore"
	"github.com/vbonduro/portfolio/internal/render"
)

// Page bundles the page model and the components that drive it.
type Page struct {
	Doc      *page.Document
	Regions  config.Regions
	Session  *auth.Session
	Controls *filter.Controls
	Dialog   *dialog.Controller
	Gallery  render.View
	Filters  render.View
	Staging  photostore.PhotoStore
}

type Server struct {
	page      Page
	templates fs.FS
	dialogs   fs.FS
	mux       *http.ServeMux
	logger    *slog.Logger

	// mu serializes every handler that reads or mutates the page model, so
	// events are handled one at a time as on a UI thread.
	mu sync.Mutex
}

// NewServer serves p. templates holds the page templates and dialogs the
// dialog view templates exposed under /templates/.
func NewServer(p Page, templates, dialogs fs.FS, logger *slog.Logger) *Server {
	s := &Server{
		page:      p,
		templates: templates,
		dialogs:   dialogs,
		mux:       http.NewServeMux(),
		logger:    logging.Component(logger, "web"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.serialized(s.handleIndex))
	s.mux.HandleFunc("GET /login", s.serialized(s.handleLoginPage))
	s.mux.HandleFunc("POST /login", s.serialized(s.handleLogin))
	s.mux.HandleFunc("POST /logout", s.serialized(s.handleLogout))
	s.mux.HandleFunc("POST /filters/{id}", s.serialized(s.handleFilter))
	s.mux.HandleFunc("POST /dialog/open", s.serialized(s.requireSession(s.handleDialogOpen)))
	s.mux.HandleFunc("POST /dialog/click", s.serialized(s.requireSession(s.handleDialogClick)))
	s.mux.HandleFunc("POST /dialog/submit", s.serialized(s.requireSession(s.handleDialogSubmit)))
	s.mux.HandleFunc("POST /dialog/photo", s.serialized(s.requireSession(s.handleDialogPhoto)))
	s.mux.HandleFunc("GET /staged/{key}", s.requireSession(s.handleStagedPhoto))
	s.mux.HandleFunc("GET /templates/{name}", s.handleDialogTemplate)
}

func (s *Server) serialized(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		h(w, r)
	}
}

// requireSession sends visitors without the admin session cookie to the
// login page.
func (s *Server) requireSession(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.isAdmin(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h(w, r)
	}
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"style-src 'self' 'unsafe-inline'; "+
				"img-src 'self' data: http: https:; "+
				"form-action 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, status int, data any, files ...string) error {
	tmpl, err := template.New("").ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// composeDialog expands the dialog content region. Dialog view markup names
// its nested regions with {{region .Key}}, resolved against the page model.
func (s *Server) composeDialog() template.HTML {
	markup := s.page.Doc.Region(s.page.Regions.DialogContent).HTML()
	if markup == "" {
		return ""
	}
	tmpl, err := template.New("dialog").Funcs(template.FuncMap{
		"region": s.regionHTML,
	}).Parse(markup)
	if err != nil {
		s.logger.Error("failed to parse dialog markup", "error", err)
		return ""
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, s.page.Regions); err != nil {
		s.logger.Error("failed to compose dialog", "error", err)
		return ""
	}
	return template.HTML(buf.String())
}

// regionHTML exposes region markup unescaped. Regions only ever hold
// html/template output.
func (s *Server) regionHTML(key string) template.HTML {
	return template.HTML(s.page.Doc.Region(key).HTML())
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
