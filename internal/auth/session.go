// Package auth keeps the admin session credential.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/vbonduro/portfolio/internal/domain"
	"github.com/vbonduro/portfolio/internal/logging"
)

// Authenticator exchanges login details for a credential.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (domain.Credential, error)
}

// Session is a volatile single-slot credential holder. It lives as long as
// the process and is safe for concurrent use. The credential belongs to the
// browser holding the id handed out by the last successful Login.
type Session struct {
	mu     sync.RWMutex
	cred   *domain.Credential
	owner  string
	authn  Authenticator
	logger *slog.Logger
}

func NewSession(authn Authenticator, logger *slog.Logger) *Session {
	return &Session{authn: authn, logger: logging.Component(logger, "auth")}
}

// Login authenticates against the remote API, stores the credential and
// returns the id of the new session. Any previous owner loses access.
// A failed login leaves any existing session untouched.
func (s *Session) Login(ctx context.Context, email, password string) (string, error) {
	cred, err := s.authn.Login(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.cred = &cred
	s.owner = id
	s.mu.Unlock()
	s.logger.Info("session started", "user_id", cred.SubjectID)
	return id, nil
}

// Set stores cred as the current credential without an owning browser.
// Callers reach it through CurrentCredential only.
func (s *Session) Set(cred domain.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &cred
	s.owner = ""
}

// Owns reports whether id names the live session.
func (s *Session) Owns(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id == "" || s.cred == nil || s.owner == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(id), []byte(s.owner)) == 1
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred != nil
}

// CurrentCredential returns the stored credential, if any.
func (s *Session) CurrentCredential() (domain.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return domain.Credential{}, false
	}
	return *s.cred, true
}

// EndSession drops the credential. Ending a missing session is a no-op.
func (s *Session) EndSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred != nil {
		s.logger.Info("session ended", "user_id", s.cred.SubjectID)
	}
	s.cred = nil
	s.owner = ""
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9._-]*[a-zA-Z0-9])?@[a-zA-Z0-9]([a-zA-Z0-9.-]*[a-zA-Z0-9])?\.([a-zA-Z]{2,})$`)

// ValidateCredentials reports whether email and password are worth sending
// to the API at all.
func ValidateCredentials(email, password string) bool {
	return emailPattern.MatchString(email) && len(password) > 2
}
