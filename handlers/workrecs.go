package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"attendance/forms"
	"attendance/models"

	"github.com/go-chi/chi/v5"
)

// Store is the persistence surface the work-record handlers need. Lookups
// return (nil, nil) when the row does not exist.
type Store interface {
	Person(ctx context.Context, id uint) (*models.Person, error)
	WorkRec(ctx context.Context, personID uint, yymm string, dd int) (*models.WorkRec, error)
	MonthWorkRecs(ctx context.Context, personID uint, yymm string) ([]models.WorkRec, error)
	CreateWorkRec(ctx context.Context, rec *models.WorkRec) error
	SaveWorkRec(ctx context.Context, rec *models.WorkRec) error
	DeleteWorkRec(ctx context.Context, rec *models.WorkRec) error
}

// Presence reports the card UID currently on the reader, "" for nobody.
type Presence interface {
	CurrentIdentity() string
}

// Enqueuer schedules an asynchronous aggregation pass for a person's month.
type Enqueuer interface {
	Enqueue(personID uint, yymm string)
}

type WorkRecHandler struct {
	log       *slog.Logger
	store     Store
	presence  Presence
	jobs      Enqueuer
	templates map[string]*template.Template
}

func NewWorkRecHandler(log *slog.Logger, store Store, presence Presence, jobs Enqueuer, templates map[string]*template.Template) *WorkRecHandler {
	return &WorkRecHandler{
		log:       log,
		store:     store,
		presence:  presence,
		jobs:      jobs,
		templates: templates,
	}
}

// DayItem is one calendar day of the monthly grid. Pointer fields are nil on
// a creatable placeholder day.
type DayItem struct {
	DD        int      `json:"dd"`
	Week      string   `json:"week"`
	Situation string   `json:"situation"`
	WorkIn    *string  `json:"work_in"`
	WorkOut   *string  `json:"work_out"`
	BreakT    *float64 `json:"break_t"`
	Value     *float64 `json:"value"`
	OverT     *float64 `json:"over_t"`
	Reason    string   `json:"reason"`
	Enabled   bool     `json:"enabled"`
	Creation  bool     `json:"creation"`
}

// MonthHead carries the month navigation keys and whether the person's own
// card is currently on the reader.
type MonthHead struct {
	Prev string `json:"prev"`
	Next string `json:"next"`
	IDM  bool   `json:"idm"`
}

// MonthFoot is the running total over days with a recorded value.
type MonthFoot struct {
	Sum   float64 `json:"sum"`
	Count int     `json:"count"`
	Avg   float64 `json:"avg"`
}

// checkYYMMDD reports whether yymm is a 6-digit year-month whose (year,
// month, dd) triple forms a real calendar date.
func checkYYMMDD(yymm string, dd int) bool {
	if len(yymm) != 6 {
		return false
	}
	yy, err := strconv.Atoi(yymm[:4])
	if err != nil {
		return false
	}
	mm, err := strconv.Atoi(yymm[4:])
	if err != nil {
		return false
	}
	if yy < 1 {
		return false
	}
	d := time.Date(yy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	return d.Year() == yy && int(d.Month()) == mm && d.Day() == dd
}

// monthStart assumes yymm already passed checkYYMMDD.
func monthStart(yymm string) time.Time {
	yy, _ := strconv.Atoi(yymm[:4])
	mm, _ := strconv.Atoi(yymm[4:])
	return time.Date(yy, time.Month(mm), 1, 0, 0, 0, 0, time.UTC)
}

// buildMonth walks every day from the first of the month (inclusive) to the
// first of the next month (exclusive), merging in stored records and
// accumulating the footer aggregate.
func buildMonth(first time.Time, recs []models.WorkRec) ([]DayItem, MonthFoot) {
	byDay := make(map[int]*models.WorkRec, len(recs))
	for i := range recs {
		byDay[recs[i].DD] = &recs[i]
	}

	var items []DayItem
	var foot MonthFoot
	last := first.AddDate(0, 1, 0)
	for d := first; d.Before(last); d = d.AddDate(0, 0, 1) {
		item := DayItem{
			DD:       d.Day(),
			Week:     d.Weekday().String()[:3],
			Creation: true,
		}
		if rec := byDay[d.Day()]; rec != nil {
			item.Situation = rec.Situation
			item.WorkIn = rec.WorkIn
			item.WorkOut = rec.WorkOut
			item.BreakT = rec.BreakT
			item.Value = rec.Value
			item.OverT = rec.OverT
			item.Reason = rec.Reason
			item.Enabled = rec.Enabled
			item.Creation = false
			if rec.Value != nil {
				foot.Sum += *rec.Value
				foot.Count++
			}
		}
		items = append(items, item)
	}
	if foot.Count > 0 {
		foot.Avg = math.Round(foot.Sum/float64(foot.Count)*10) / 10
	}
	return items, foot
}

func parsePersonID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func indexPath(personID uint, yymm string) string {
	return fmt.Sprintf("/workrecs/%d/%s", personID, yymm)
}

// Index renders the monthly calendar grid. No mutation, no auth.
func (h *WorkRecHandler) Index(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	yymm := chi.URLParam(r, "yymm")
	if yymm != "" && !checkYYMMDD(yymm, 1) {
		http.Error(w, "invalid yymm", http.StatusBadRequest)
		return
	}

	person, err := h.store.Person(r.Context(), id)
	if err != nil {
		h.serverError(w, "load person", err)
		return
	}
	if person == nil {
		http.NotFound(w, r)
		return
	}

	var first time.Time
	if yymm == "" {
		now := time.Now()
		first = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		yymm = first.Format("200601")
	} else {
		first = monthStart(yymm)
	}

	head := MonthHead{
		Prev: first.AddDate(0, -1, 0).Format("200601"),
		Next: first.AddDate(0, 1, 0).Format("200601"),
		IDM:  person.IDM == h.presence.CurrentIdentity(),
	}

	recs, err := h.store.MonthWorkRecs(r.Context(), id, yymm)
	if err != nil {
		h.serverError(w, "load month", err)
		return
	}
	items, foot := buildMonth(first, recs)

	data := map[string]interface{}{
		"Person":  person,
		"Yymm":    yymm,
		"Head":    head,
		"Items":   items,
		"Foot":    foot,
		"Error":   r.URL.Query().Get("error"),
		"Success": r.URL.Query().Get("success"),
	}
	h.templates["workrecs-index"].ExecuteTemplate(w, "base", data)
}

// Create shows the blank day-entry form on GET and persists a new record on
// POST. The form variant follows the card on the reader.
func (h *WorkRecHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	yymm := chi.URLParam(r, "yymm")
	dd, err := strconv.Atoi(chi.URLParam(r, "dd"))
	if err != nil || !checkYYMMDD(yymm, dd) {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	person, err := h.store.Person(r.Context(), id)
	if err != nil {
		h.serverError(w, "load person", err)
		return
	}
	if person == nil {
		http.NotFound(w, r)
		return
	}

	variant := forms.VariantFor(h.presence.CurrentIdentity(), person.IDM)
	form := forms.NewWorkRec(variant)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		form.Bind(r)
		if form.Validate() {
			rec := &models.WorkRec{PersonID: id, Yymm: yymm, DD: dd}
			form.Apply(rec)
			if err := h.store.CreateWorkRec(r.Context(), rec); err != nil {
				h.log.Error("create workrec", slog.Any("error", err))
				h.renderForm(w, person, yymm, dd, form, "Could not save the entry")
				return
			}
			h.jobs.Enqueue(id, yymm)
			http.Redirect(w, r, indexPath(id, yymm)+"?success=Entry+saved", http.StatusSeeOther)
			return
		}
	}

	h.renderForm(w, person, yymm, dd, form, "")
}

// Edit overwrites an existing day record in place. 404 when the day has no
// record yet.
func (h *WorkRecHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	person, err := h.store.Person(r.Context(), id)
	if err != nil {
		h.serverError(w, "load person", err)
		return
	}
	if person == nil {
		http.NotFound(w, r)
		return
	}

	yymm := chi.URLParam(r, "yymm")
	dd, err := strconv.Atoi(chi.URLParam(r, "dd"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	rec, err := h.store.WorkRec(r.Context(), id, yymm, dd)
	if err != nil {
		h.serverError(w, "load workrec", err)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}

	variant := forms.VariantFor(h.presence.CurrentIdentity(), person.IDM)
	form := forms.FromRecord(variant, rec)

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form data", http.StatusBadRequest)
			return
		}
		form.Bind(r)
		if form.Validate() {
			form.Apply(rec)
			if err := h.store.SaveWorkRec(r.Context(), rec); err != nil {
				h.log.Error("save workrec", slog.Any("error", err))
				h.renderForm(w, person, yymm, dd, form, "Could not save the entry")
				return
			}
			h.jobs.Enqueue(id, yymm)
			http.Redirect(w, r, indexPath(id, yymm)+"?success=Entry+saved", http.StatusSeeOther)
			return
		}
	}

	h.renderForm(w, person, yymm, dd, form, "")
}

// Destroy deletes a day record and always redirects back to the month.
// Deleting someone else's record is refused once a clock-in time exists;
// absence-only entries stay removable without the card.
func (h *WorkRecHandler) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	person, err := h.store.Person(r.Context(), id)
	if err != nil {
		h.serverError(w, "load person", err)
		return
	}
	if person == nil {
		http.NotFound(w, r)
		return
	}

	yymm := chi.URLParam(r, "yymm")
	flash := ""

	dd, err := strconv.Atoi(chi.URLParam(r, "dd"))
	var rec *models.WorkRec
	if err == nil {
		rec, err = h.store.WorkRec(r.Context(), id, yymm, dd)
		if err != nil {
			h.serverError(w, "load workrec", err)
			return
		}
	}

	idm := h.presence.CurrentIdentity()
	switch {
	case rec == nil:
		// nothing to delete
	case idm != person.IDM && rec.WorkIn != nil:
		flash = "?error=Touch+the+member+ID+card+to+delete+this+entry"
	default:
		if err := h.store.DeleteWorkRec(r.Context(), rec); err != nil {
			h.log.Error("delete workrec", slog.Any("error", err))
			flash = "?error=Could+not+delete+the+entry"
		} else {
			h.jobs.Enqueue(id, yymm)
			flash = "?success=Entry+deleted"
		}
	}

	http.Redirect(w, r, indexPath(id, yymm)+flash, http.StatusSeeOther)
}

// Update is the manual recompute escape hatch: enqueue and bounce back.
func (h *WorkRecHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	yymm := chi.URLParam(r, "yymm")
	h.jobs.Enqueue(id, yymm)
	http.Redirect(w, r, indexPath(id, yymm), http.StatusSeeOther)
}

// ExportCSV downloads one person-month as CSV.
func (h *WorkRecHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	id, ok := parsePersonID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	yymm := chi.URLParam(r, "yymm")
	if !checkYYMMDD(yymm, 1) {
		http.Error(w, "invalid yymm", http.StatusBadRequest)
		return
	}

	person, err := h.store.Person(r.Context(), id)
	if err != nil {
		h.serverError(w, "load person", err)
		return
	}
	if person == nil {
		http.NotFound(w, r)
		return
	}

	recs, err := h.store.MonthWorkRecs(r.Context(), id, yymm)
	if err != nil {
		h.serverError(w, "load month", err)
		return
	}
	items, _ := buildMonth(monthStart(yymm), recs)

	filename := fmt.Sprintf("workrecs_%d_%s.csv", person.ID, yymm)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	writer := csv.NewWriter(w)
	defer writer.Flush()

	writer.Write([]string{"Day", "Week", "Situation", "In", "Out", "Break", "Hours", "Overtime", "Reason"})
	for _, item := range items {
		writer.Write([]string{
			strconv.Itoa(item.DD),
			item.Week,
			item.Situation,
			csvString(item.WorkIn),
			csvString(item.WorkOut),
			csvFloat(item.BreakT),
			csvFloat(item.Value),
			csvFloat(item.OverT),
			item.Reason,
		})
	}
}

func csvString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func csvFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *p)
}

func (h *WorkRecHandler) renderForm(w http.ResponseWriter, person *models.Person, yymm string, dd int, form *forms.WorkRec, errMsg string) {
	data := map[string]interface{}{
		"Person": person,
		"Yymm":   yymm,
		"DD":     dd,
		"Form":   form,
		"Full":   form.Variant == forms.Full,
		"Error":  errMsg,
	}
	h.templates["workrec-form"].ExecuteTemplate(w, "base", data)
}

func (h *WorkRecHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.log.Error(msg, slog.Any("error", err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
