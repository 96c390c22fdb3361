package web

import (
	"log/slog"
	"net/http"
	"strings"
)

const flashCookie = "flash"

// Flash kinds.
const (
	FlashSuccess     = "success"
	FlashDestructive = "destructive"
)

// Flash is a one-shot notification carried across a redirect.
type Flash struct {
	Kind    string
	Message string
}

// setFlash stores a notification for the next page render.
func (s *Server) setFlash(w http.ResponseWriter, kind, message string) {
	encoded, err := s.Codec.Encode(flashCookie, kind+"|"+message)
	if err != nil {
		slog.Error("failed to encode flash", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// popFlash returns and clears the pending notification, if any. A cookie
// that does not decode is dropped.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookie)
	if err != nil || cookie.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})

	raw, err := s.Codec.Decode(flashCookie, cookie.Value)
	if err != nil {
		slog.Warn("discarding undecodable flash", "error", err)
		return nil
	}
	kind, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}

// redirectWithFlash sets a notification and redirects with 303.
func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	if message != "" {
		s.setFlash(w, kind, message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
