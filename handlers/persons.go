package handlers

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"attendance/middleware"
	"attendance/models"
)

// PersonStore is the persistence surface of the persons admin page.
type PersonStore interface {
	Persons(ctx context.Context) ([]models.Person, error)
	CreatePerson(ctx context.Context, person *models.Person) error
}

type PersonHandler struct {
	log       *slog.Logger
	store     PersonStore
	templates map[string]*template.Template
}

func NewPersonHandler(log *slog.Logger, store PersonStore, templates map[string]*template.Template) *PersonHandler {
	return &PersonHandler{
		log:       log,
		store:     store,
		templates: templates,
	}
}

func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	persons, err := h.store.Persons(r.Context())
	if err != nil {
		h.log.Error("list persons", slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"User":    middleware.GetUserFromContext(r.Context()),
		"Persons": persons,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["persons"].ExecuteTemplate(w, "base", data)
}

func (h *PersonHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/persons?error=Invalid+form+data", http.StatusSeeOther)
		return
	}

	name := r.FormValue("name")
	idm := r.FormValue("idm")
	if name == "" {
		http.Redirect(w, r, "/persons?error=Name+is+required", http.StatusSeeOther)
		return
	}

	person := &models.Person{Name: name, IDM: idm}
	if err := h.store.CreatePerson(r.Context(), person); err != nil {
		h.log.Error("create person", slog.Any("error", err))
		http.Redirect(w, r, "/persons?error=Could+not+create+person", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/persons?success=Person+created", http.StatusSeeOther)
}
