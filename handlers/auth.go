package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"overtime-tracker/config"
	"overtime-tracker/logging"
	"overtime-tracker/middleware"
	"overtime-tracker/services"
)

type AuthHandler struct {
	config    *config.Config
	templates map[string]*template.Template
	auth      *middleware.Auth
	users     *services.UserService
}

func NewAuthHandler(cfg *config.Config, templates map[string]*template.Template, auth *middleware.Auth, users *services.UserService) *AuthHandler {
	return &AuthHandler{
		config:    cfg,
		templates: templates,
		auth:      auth,
		users:     users,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.templates, "login", page{
		"Company": h.config.CompanyName,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/login", "Invalid form data")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.users.Authenticate(r.Context(), username, password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		logging.Logger.WithField("username", username).Info("failed login")
		redirectError(w, r, "/login", "Invalid credentials")
		return
	}
	if err != nil {
		serverError(w, r, err)
		return
	}

	if err := h.auth.StartSession(w, user); err != nil {
		serverError(w, r, err)
		return
	}

	if user.MustChangePassword {
		redirectError(w, r, "/change_password", "Please change your password first")
		return
	}

	redirectSuccess(w, r, "/dashboard", "Logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.EndSession(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) ChangePasswordPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, h.templates, "change_password", page{
		"Company": h.config.CompanyName,
		"User":    currentUser(r),
		"Error":   r.URL.Query().Get("error"),
	})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if user == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectError(w, r, "/change_password", "Invalid form data")
		return
	}

	err := h.users.ChangePassword(r.Context(),
		user,
		r.FormValue("current_password"),
		r.FormValue("new_password"),
		r.FormValue("confirm_password"),
	)
	if err != nil {
		handleServiceError(w, r, err, "/change_password")
		return
	}

	logging.Logger.WithField("username", user.Username).Info("password changed")
	h.auth.EndSession(w)
	redirectSuccess(w, r, "/login", "Password updated. Please login again.")
}
