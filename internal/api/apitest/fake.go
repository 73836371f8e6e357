// Package apitest provides an in-memory portfolio API for tests.
package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/vbonduro/portfolio/internal/domain"
)

// Token is the bearer token the fake issues on login.
const Token = "test-token"

// Valid login details.
const (
	Email    = "sophie.bluel@test.tld"
	Password = "S0phie"
)

// Server is a fake portfolio API. Its state may be inspected and changed
// between requests.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	works      []domain.Item
	categories []domain.CategoryRef
	nextID     int
	down       bool
	uploads    []Upload
}

// Upload records one POST /works.
type Upload struct {
	Title    string
	Category string
	MimeType string
	Image    []byte
}

// NewServer starts a fake serving works and categories. Call Close when done.
func NewServer(works []domain.Item, categories []domain.CategoryRef) *Server {
	s := &Server{works: append([]domain.Item(nil), works...), categories: categories, nextID: 1}
	for _, w := range works {
		if w.ID >= s.nextID {
			s.nextID = w.ID + 1
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /works", s.handleListWorks)
	mux.HandleFunc("GET /categories", s.handleListCategories)
	mux.HandleFunc("POST /works", s.handleCreateWork)
	mux.HandleFunc("DELETE /works/{id}", s.handleDeleteWork)
	mux.HandleFunc("POST /users/login", s.handleLogin)
	s.Server = httptest.NewServer(s.guard(mux))
	return s
}

// SetDown makes every request fail with 503 while down is true.
func (s *Server) SetDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

func (s *Server) Works() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Item(nil), s.works...)
}

func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		down := s.down
		s.mu.Unlock()
		if down {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+Token
}

func (s *Server) handleListWorks(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.works)
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.categories)
}

func (s *Server) handleCreateWork(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image required", http.StatusBadRequest)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	categoryID, err := strconv.Atoi(r.FormValue("category"))
	if err != nil {
		http.Error(w, "bad category", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, Upload{
		Title:    r.FormValue("title"),
		Category: r.FormValue("category"),
		MimeType: header.Header.Get("Content-Type"),
		Image:    data,
	})
	created := domain.Item{
		ID:            s.nextID,
		Title:         r.FormValue("title"),
		ImageLocation: "http://localhost/images/" + strconv.Itoa(s.nextID) + ".png",
		CategoryID:    categoryID,
		OwnerID:       1,
	}
	s.nextID++
	s.works = append(s.works, created)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteWork(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, work := range s.works {
		if work.ID == id {
			s.works = append(s.works[:i:i], s.works[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	http.NotFound(w, r)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(body.Email, Email) || body.Password != Password {
		http.Error(w, "not authorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, domain.Credential{SubjectID: 1, Token: Token})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
