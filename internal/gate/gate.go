// Package gate decides route admission from the loaded session.
//
// Every protected route is wrapped by the same guard, parameterized by a
// predicate over the session. Denied navigations redirect to the login
// page before the page handler runs. Missing login and missing role are
// not distinguished: both land on login.
package gate

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/metrics"
	"github.com/erazemk/zaloga/internal/session"
)

// LoginPath is where denied navigations are sent.
const LoginPath = "/login"

// Predicate reports whether a session may access a route.
type Predicate func(*session.Session) bool

// Class is a route class.
type Class int

// Route classes.
const (
	PublicRoute Class = iota
	AuthenticatedRoute
	AdminRoute
)

// String returns the class name.
func (c Class) String() string {
	switch c {
	case PublicRoute:
		return "public"
	case AuthenticatedRoute:
		return "authenticated"
	case AdminRoute:
		return "admin"
	default:
		return "unknown"
	}
}

// Predicate returns the admission predicate of the class. Unknown classes
// admit nobody.
func (c Class) Predicate() Predicate {
	switch c {
	case PublicRoute:
		return Public
	case AuthenticatedRoute:
		return Authenticated
	case AdminRoute:
		return Admin
	default:
		return func(*session.Session) bool { return false }
	}
}

// Public admits everyone.
func Public(*session.Session) bool { return true }

// Authenticated admits sessions holding a credential.
func Authenticated(s *session.Session) bool { return s.IsAuthenticated() }

// Admin admits authenticated ADMIN sessions.
func Admin(s *session.Session) bool { return s.IsAdmin() }

// Decision is the outcome of a gate check.
type Decision struct {
	Admit    bool
	Redirect string
}

// Decide evaluates the predicate against the session.
func Decide(canAccess Predicate, s *session.Session) Decision {
	if canAccess(s) {
		return Decision{Admit: true}
	}
	return Decision{Redirect: LoginPath}
}

// Require wraps handlers of the given class. The session must have been
// placed in the request context by session.Middleware; a missing session
// is treated as logged out.
func Require(class Class) func(http.Handler) http.Handler {
	canAccess := class.Predicate()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := session.FromContext(r.Context())
			d := Decide(canAccess, s)
			if d.Admit {
				metrics.GateDecisionsTotal.WithLabelValues(class.String(), "admit").Inc()
				next.ServeHTTP(w, r)
				return
			}

			reason := "unauthenticated"
			if s.IsAuthenticated() {
				reason = "insufficient_role"
			}
			metrics.GateDecisionsTotal.WithLabelValues(class.String(), reason).Inc()
			slog.Debug("route denied", "path", r.URL.Path, "class", class.String(), "reason", reason)
			http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
		})
	}
}
