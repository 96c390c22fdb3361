package gate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/session"
)

func loadSession(t *testing.T, credential, role string) *session.Session {
	t.Helper()
	ctx := context.Background()
	s := session.Load(ctx, session.NewMemoryStorage(), session.DefaultObfuscator())
	if credential != "" {
		require.NoError(t, s.Establish(ctx, credential, role))
	}
	return s
}

func TestDecide(t *testing.T) {
	loggedOut := loadSession(t, "", "")
	manager := loadSession(t, "tok", model.RoleManager)
	admin := loadSession(t, "tok", model.RoleAdmin)

	tests := []struct {
		name  string
		class Class
		sess  *session.Session
		admit bool
	}{
		{"public logged out", PublicRoute, loggedOut, true},
		{"public nil session", PublicRoute, nil, true},
		{"authenticated logged out", AuthenticatedRoute, loggedOut, false},
		{"admin logged out", AdminRoute, loggedOut, false},
		{"authenticated manager", AuthenticatedRoute, manager, true},
		{"admin manager", AdminRoute, manager, false},
		{"authenticated admin", AuthenticatedRoute, admin, true},
		{"admin admin", AdminRoute, admin, true},
		{"admin nil session", AdminRoute, nil, false},
		{"unknown class", Class(42), admin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.class.Predicate(), tt.sess)
			assert.Equal(t, tt.admit, d.Admit)
			if !tt.admit {
				assert.Equal(t, LoginPath, d.Redirect)
			}
		})
	}
}

func TestRequireRedirectsBeforeHandlerRuns(t *testing.T) {
	tests := []struct {
		name   string
		class  Class
		sess   *session.Session
		status int
	}{
		{"logged out to admin", AdminRoute, loadSession(t, "", ""), http.StatusSeeOther},
		{"logged out to authenticated", AuthenticatedRoute, loadSession(t, "", ""), http.StatusSeeOther},
		{"manager to admin", AdminRoute, loadSession(t, "tok", model.RoleManager), http.StatusSeeOther},
		{"manager to authenticated", AuthenticatedRoute, loadSession(t, "tok", model.RoleManager), http.StatusOK},
		{"no session in context", AuthenticatedRoute, nil, http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			h := Require(tt.class)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ran = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/supply", nil)
			if tt.sess != nil {
				req = req.WithContext(session.WithSession(req.Context(), tt.sess))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status == http.StatusOK, ran)
			if tt.status == http.StatusSeeOther {
				assert.Equal(t, LoginPath, rec.Header().Get("Location"))
			}
		})
	}
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "admin", AdminRoute.String())
	assert.Equal(t, "unknown", Class(9).String())
}
