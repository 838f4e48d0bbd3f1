package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// MonthResponse is the JSON shape of one person-month.
type MonthResponse struct {
	PersonID uint      `json:"person_id"`
	Name     string    `json:"name"`
	Yymm     string    `json:"yymm"`
	Head     MonthHead `json:"head"`
	Items    []DayItem `json:"items"`
	Foot     MonthFoot `json:"foot"`
}

// MonthJSON serves the monthly grid to API consumers, mirroring Index.
func (h *WorkRecHandler) MonthJSON(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(r)
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "person not found"})
		return
	}

	yymm := chi.URLParam(r, "yymm")
	if !checkYYMMDD(yymm, 1) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid yymm"})
		return
	}

	person, err := h.store.Person(r.Context(), id)
	if err != nil {
		h.serverError(w, "load person", err)
		return
	}
	if person == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{"error": "person not found"})
		return
	}

	first := monthStart(yymm)
	recs, err := h.store.MonthWorkRecs(r.Context(), id, yymm)
	if err != nil {
		h.serverError(w, "load month", err)
		return
	}
	items, foot := buildMonth(first, recs)

	render.JSON(w, r, MonthResponse{
		PersonID: person.ID,
		Name:     person.Name,
		Yymm:     yymm,
		Head: MonthHead{
			Prev: first.AddDate(0, -1, 0).Format("200601"),
			Next: first.AddDate(0, 1, 0).Format("200601"),
			IDM:  person.IDM == h.presence.CurrentIdentity(),
		},
		Items: items,
		Foot:  foot,
	})
}
