package web

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/vbonduro/portfolio/internal/auth"
	"github.com/vbonduro/portfolio/internal/config"
)

const (
	loginInvalidMessage  = "E-mail et / ou mot de passe mal renseigné."
	loginRejectedMessage = "Erreur dans l'identifiant ou le mot de passe."
)

type indexData struct {
	Authenticated bool
	ActiveNav     string
	Gallery       template.HTML
	Filters       template.HTML
	DialogOpen    bool
	Dialog        template.HTML
	Regions       config.Regions
}

type loginData struct {
	Authenticated bool
	ActiveNav     string
	Email         string
	Error         string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	admin := s.isAdmin(r)
	data := indexData{
		Authenticated: admin,
		ActiveNav:     "projects",
		Gallery:       s.regionHTML(s.page.Regions.Gallery),
		Filters:       s.regionHTML(s.page.Regions.Filters),
		DialogOpen:    admin && s.page.Dialog.IsOpen(),
		Regions:       s.page.Regions,
	}
	if data.DialogOpen {
		data.Dialog = s.composeDialog()
	}
	if err := s.renderPage(w, http.StatusOK, data, "base.html", "pages/index.html"); err != nil {
		s.logger.Error("render page failed", "page", "index", "error", err)
	}
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.isAdmin(r) {
		redirectHome(w, r)
		return
	}
	s.renderLogin(w, http.StatusOK, loginData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if !auth.ValidateCredentials(email, password) {
		s.renderLogin(w, http.StatusBadRequest, loginData{Email: email, Error: loginInvalidMessage})
		return
	}
	id, err := s.page.Session.Login(r.Context(), email, password)
	if err != nil {
		s.logger.Warn("login failed", "error", err)
		s.renderLogin(w, http.StatusUnauthorized, loginData{Email: email, Error: loginRejectedMessage})
		return
	}
	// The new owner starts from a closed dialog.
	s.page.Dialog.Close()
	setSessionCookie(w, r, id)
	redirectHome(w, r)
}

// handleLogout ends the admin session only for its owner. Anyone else just
// loses whatever stale cookie they sent.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.isAdmin(r) {
		s.page.Dialog.Close()
		s.page.Session.EndSession()
	}
	clearSessionCookie(w, r)
	redirectHome(w, r)
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, data loginData) {
	data.ActiveNav = "login"
	if err := s.renderPage(w, status, data, "base.html", "pages/login.html"); err != nil {
		s.logger.Error("render page failed", "page", "login", "error", err)
	}
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	id, ok := s.page.Controls.Activate(r.PathValue("id"))
	if !ok {
		http.Error(w, "unknown filter", http.StatusNotFound)
		return
	}
	if err := s.page.Gallery.Render(r.Context()); err != nil {
		s.logger.Error("failed to draw gallery", "filter", id, "error", err)
	}
	if err := s.page.Filters.Render(r.Context()); err != nil {
		s.logger.Error("failed to draw filters", "filter", id, "error", err)
	}
	redirectHome(w, r)
}
