package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/backend"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/session"
)

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "home.html", &struct{ PageData }{s.page(w, r, "Inventory")})
}

// NotFound renders the not-found page for unknown paths.
func (s *Server) NotFound(w http.ResponseWriter, r *http.Request) {
	s.Templates.RenderStatus(w, http.StatusNotFound, "not_found.html", &struct{ PageData }{s.page(w, r, "Page not found")})
}

type loginPage struct {
	PageData
	Email string
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &loginPage{PageData: s.page(w, r, "Login")})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := loginForm{Email: f.String("email"), Password: r.PostFormValue("password")}

	data := &loginPage{PageData: s.page(w, r, "Login"), Email: form.Email}
	if errs := s.validateForm(form); len(errs) > 0 {
		data.Errors = errs
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "login.html", data)
		return
	}

	resp, err := s.Backend.Login(r.Context(), backend.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		slog.Warn("login failed", "email", form.Email, "error", err)
		data.Error = backend.Message(err, "Login failed")
		s.Templates.RenderStatus(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	sess := session.FromContext(r.Context())
	if err := sess.Establish(r.Context(), resp.Token, resp.Role); err != nil {
		slog.Error("failed to establish session", "error", err)
		data.Error = "Login failed"
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "login.html", data)
		return
	}

	s.redirectWithFlash(w, r, "/dashboard", FlashSuccess, resp.Message)
}

type registerPage struct {
	PageData
	Name        string
	Email       string
	PhoneNumber string
}

// RegisterPage handles GET /register.
func (s *Server) RegisterPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "register.html", &registerPage{PageData: s.page(w, r, "Register")})
}

// RegisterSubmit handles POST /register.
func (s *Server) RegisterSubmit(w http.ResponseWriter, r *http.Request) {
	f := newFormReader(r)
	form := registerForm{
		Name:        f.String("name"),
		Email:       f.String("email"),
		Password:    r.PostFormValue("password"),
		PhoneNumber: f.String("phoneNumber"),
	}

	data := &registerPage{
		PageData:    s.page(w, r, "Register"),
		Name:        form.Name,
		Email:       form.Email,
		PhoneNumber: form.PhoneNumber,
	}
	if errs := s.validateForm(form); len(errs) > 0 {
		data.Errors = errs
		s.Templates.RenderStatus(w, http.StatusUnprocessableEntity, "register.html", data)
		return
	}

	msg, err := s.Backend.Register(r.Context(), backend.RegisterRequest{
		Name:        form.Name,
		Email:       form.Email,
		Password:    form.Password,
		PhoneNumber: form.PhoneNumber,
	})
	if err != nil {
		slog.Warn("registration failed", "email", form.Email, "error", err)
		data.Error = backend.Message(err, "Registration failed")
		s.Templates.RenderStatus(w, http.StatusBadRequest, "register.html", data)
		return
	}

	if msg == "" {
		msg = "Registration successful, please log in"
	}
	s.redirectWithFlash(w, r, "/login", FlashSuccess, msg)
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := session.FromContext(r.Context()).Clear(r.Context()); err != nil {
		slog.Error("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Profile handles GET /profile.
func (s *Server) Profile(w http.ResponseWriter, r *http.Request) {
	data := &struct {
		PageData
		User       *model.User
		Credential *auth.Info
		Expired    bool
	}{PageData: s.page(w, r, "Profile")}

	user, err := s.Backend.CurrentUser(r.Context(), token(r))
	if err != nil {
		data.Error = loadError(err, "profile")
	}
	data.User = user

	info, err := auth.Inspect(token(r))
	switch {
	case err == nil:
		data.Credential = info
		data.Expired = info.Expired(s.Now())
	case !errors.Is(err, auth.ErrNotJWT):
		slog.Warn("failed to read credential claims", "error", err)
	}

	s.Templates.Render(w, "profile.html", data)
}
