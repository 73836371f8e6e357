package web

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/vbonduro/portfolio/internal/page"
	"github.com/vbonduro/portfolio/internal/photostore"
)

// maxFormSize bounds the multipart body: one photo plus the text fields.
const maxFormSize = photostore.MaxPhotoSize + 64*1024

func (s *Server) handleDialogOpen(w http.ResponseWriter, r *http.Request) {
	s.page.Dialog.Open(r.Context())
	redirectHome(w, r)
}

// handleDialogClick turns a posted dialog control into a click event. The
// form names the clicked element by region key or role marker, plus an
// optional item id.
func (s *Server) handleDialogClick(w http.ResponseWriter, r *http.Request) {
	target := page.Target{Key: r.FormValue("region")}
	if role := r.FormValue("role"); role != "" {
		target.Roles = []string{role}
	}
	if id := r.FormValue("id"); id != "" {
		target.Data = map[string]string{"id": id}
	}

	n := s.page.Doc.Fire(r.Context(), s.page.Regions.DialogRoot, page.Event{Kind: page.Click, Target: target})
	s.logger.Debug("dialog click", "region", target.Key, "roles", target.Roles, "listeners", n)
	redirectHome(w, r)
}

func (s *Server) handleDialogSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	file, err := readImage(r, s.logger)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	ev := page.Event{
		Kind:   page.Submit,
		Target: page.Target{Key: s.page.Regions.AddForm},
		Form: map[string]string{
			"title":    r.FormValue("title"),
			"category": r.FormValue("category"),
		},
		File: file,
	}
	if n := s.page.Doc.Fire(r.Context(), s.page.Regions.AddForm, ev); n == 0 {
		s.logger.Debug("submit without active add form")
	}
	redirectHome(w, r)
}

func (s *Server) handleDialogPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	file, err := readImage(r, s.logger)
	if err != nil {
		http.Error(w, "failed to read file", http.StatusBadRequest)
		return
	}

	ev := page.Event{Kind: page.Change, Target: page.Target{Key: s.page.Regions.PhotoInput}, File: file}
	if n := s.page.Doc.Fire(r.Context(), s.page.Regions.PhotoInput, ev); n == 0 {
		s.logger.Debug("photo change without active add form")
	}
	redirectHome(w, r)
}

// readImage returns the optional "image" part; a form without one yields nil.
func readImage(r *http.Request, logger *slog.Logger) (*page.File, error) {
	f, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closeWithLog(f, "upload file", logger)

	data, err := io.ReadAll(io.LimitReader(f, photostore.MaxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &page.File{Name: header.Filename, MimeType: header.Header.Get("Content-Type"), Data: data}, nil
}

func (s *Server) handleStagedPhoto(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	reader, mimeType, err := s.page.Staging.Get(r.Context(), key)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer closeWithLog(reader, "staged photo", s.logger)

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "no-store")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write staged photo failed", "key", key, "error", err)
	}
}

// handleDialogTemplate serves the dialog view fragments so they can be
// preloaded over HTTP by another instance.
func (s *Server) handleDialogTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name != path.Base(name) || !strings.HasSuffix(name, ".html") {
		http.NotFound(w, r)
		return
	}
	data, err := fs.ReadFile(s.dialogs, name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write template failed", "template", name, "error", err)
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
