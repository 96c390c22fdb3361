package session

import (
	"context"
	"net/http"
	"time"
)

// CookieMaxAge is how long the browser keeps session cookies.
const CookieMaxAge = 30 * 24 * time.Hour

// CookieStorage stores entries as cookies on one request/response pair.
// All cookies written by a Save go out in the same response header.
type CookieStorage struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool
}

// NewCookieStorage binds a CookieStorage to a request and its response.
func NewCookieStorage(w http.ResponseWriter, r *http.Request, secure bool) *CookieStorage {
	return &CookieStorage{r: r, w: w, secure: secure}
}

// Load implements Storage.
func (c *CookieStorage) Load(_ context.Context, keys ...string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if cookie, err := c.r.Cookie(k); err == nil && cookie.Value != "" {
			out[k] = cookie.Value
		}
	}
	return out, nil
}

// Save implements Storage.
func (c *CookieStorage) Save(_ context.Context, entries map[string]string) error {
	for k, v := range entries {
		http.SetCookie(c.w, c.cookie(k, v, int(CookieMaxAge.Seconds())))
	}
	return nil
}

// Delete implements Storage.
func (c *CookieStorage) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		http.SetCookie(c.w, c.cookie(k, "", -1))
	}
	return nil
}

func (c *CookieStorage) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

type contextKey string

const sessionKey contextKey = "session"

// WithSession returns a context carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session stored by WithSession, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// Middleware loads a cookie-backed session for every request and stores it
// in the request context.
func Middleware(codec Codec, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := Load(r.Context(), NewCookieStorage(w, r, secure), codec)
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
		})
	}
}
