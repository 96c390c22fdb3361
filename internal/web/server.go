package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/session"
	webembed "github.com/erazemk/zaloga/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleName": model.RoleName,
		"kindLabel": func(k model.Kind) string {
			if k == "" {
				return "-"
			}
			return k.Label()
		},
		"statusName": func(status string) string {
			switch status {
			case model.EquipmentAvailable:
				return "Available"
			case model.EquipmentInUse:
				return "In use"
			case model.EquipmentMaintenance:
				return "Maintenance"
			default:
				return status
			}
		},
		"number": formatNumber,
		"amount": func(a model.Amount) string {
			if !a.Valid {
				return "-"
			}
			return formatNumber(a.Value)
		},
		"percent": func(v float64) string {
			return strconv.FormatFloat(v, 'f', 0, 64) + "%"
		},
		"when": func(raw string) string {
			t, ok := model.ParseTimestamp(raw)
			if !ok {
				if raw == "" {
					return "-"
				}
				return raw
			}
			return t.Format("2006-01-02 15:04")
		},
		"monthName": func(m int) string {
			if m < 1 || m > 12 {
				return strconv.Itoa(m)
			}
			return time.Month(m).String()
		},
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// pages lists every page template. Each is parsed together with the layout.
var pages = []string{
	"home.html",
	"login.html",
	"register.html",
	"not_found.html",
	"profile.html",
	"dashboard.html",
	"supplies.html",
	"supply_form.html",
	"equipment.html",
	"equipment_form.html",
	"supply_movement.html",
	"equipment_checkin.html",
	"equipment_checkout.html",
	"supply_transactions.html",
	"supply_transaction.html",
	"equipment_transactions.html",
	"equipment_transaction.html",
	"maintenance.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with status 200.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given status. The page is
// executed into a buffer first so a failing template never sends half a
// page.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title         string
	Authenticated bool
	Admin         bool
	Role          string
	Path          string
	Flash         *Flash
	Error         string
	Errors        []string
}

// Server holds all dependencies for page handlers.
type Server struct {
	Backend       *backend.Client
	Templates     *Templates
	Codec         session.Codec
	SecureCookies bool
	Now           func() time.Time

	validate *validator.Validate
}

// page returns the base data for a page and consumes the pending flash.
func (s *Server) page(w http.ResponseWriter, r *http.Request, title string) PageData {
	sess := session.FromContext(r.Context())
	return PageData{
		Title:         title,
		Authenticated: sess.IsAuthenticated(),
		Admin:         sess.IsAdmin(),
		Role:          sess.Role(),
		Path:          r.URL.Path,
		Flash:         s.popFlash(w, r),
	}
}

// token returns the bearer credential of the request's session.
func token(r *http.Request) string {
	return session.FromContext(r.Context()).Credential()
}

// loadError builds the notification shown when a fetch fails, logging the
// underlying error.
func loadError(err error, what string) string {
	slog.Error("failed to load "+what, "error", err)
	msg := "Failed to load " + what
	if detail := backend.Message(err, ""); detail != "" {
		msg += ": " + detail
	}
	return msg
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(urlParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
