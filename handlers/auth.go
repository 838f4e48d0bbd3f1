package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"attendance/config"
	"attendance/middleware"
	"attendance/models"

	"golang.org/x/crypto/bcrypt"
)

// UserStore looks up operator accounts. Returns (nil, nil) when unknown.
type UserStore interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
}

type AuthHandler struct {
	config    *config.Config
	log       *slog.Logger
	store     UserStore
	templates map[string]*template.Template
}

func NewAuthHandler(cfg *config.Config, log *slog.Logger, store UserStore, templates map[string]*template.Template) *AuthHandler {
	return &AuthHandler{
		config:    cfg,
		log:       log,
		store:     store,
		templates: templates,
	}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Error": r.URL.Query().Get("error"),
	}
	h.templates["login"].ExecuteTemplate(w, "base", data)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.store.UserByUsername(r.Context(), username)
	if err != nil {
		h.log.Error("lookup user", slog.Any("error", err))
		http.Redirect(w, r, "/login?error=Login+failed", http.StatusSeeOther)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		http.Redirect(w, r, "/login?error=Invalid+username+or+password", http.StatusSeeOther)
		return
	}

	token, err := middleware.GenerateToken(user, h.config.JWTExpiration)
	if err != nil {
		h.log.Error("generate token", slog.Any("error", err))
		http.Redirect(w, r, "/login?error=Login+failed", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
	})

	http.Redirect(w, r, "/persons", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
