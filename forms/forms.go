// Package forms implements the day-entry form in its two variants: the full
// form with clock times, available when the person's own card is on the
// reader, and the restricted absence form shown to everyone else.
package forms

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"attendance/models"

	"github.com/go-playground/validator/v10"
)

// Variant selects which field set of the day-entry form applies.
type Variant int

const (
	// Full includes the work_in/work_out clock times.
	Full Variant = iota
	// Absence carries no clock times; existing clock times are left intact.
	Absence
)

// VariantFor resolves the form variant once per request: the full form
// applies only while the person's own card identity is on the reader.
func VariantFor(presenceID, personIDM string) Variant {
	if presenceID == personIDM {
		return Full
	}
	return Absence
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	hhmm := regexp.MustCompile(`^[0-9]{2}:[0-9]{2}$`)
	hours := regexp.MustCompile(`^[0-9]+(\.[0-9])?$`)
	mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
		return hhmm.MatchString(fl.Field().String())
	})
	mustRegister(v, "hours", func(fl validator.FieldLevel) bool {
		return hours.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// WorkRec carries the submitted (or pre-populated) field values as entered,
// so a failed submission re-renders exactly what the operator typed.
type WorkRec struct {
	Situation string `validate:"-"`
	WorkIn    string `validate:"omitempty,hhmm"`
	WorkOut   string `validate:"omitempty,hhmm"`
	BreakT    string `validate:"omitempty,hours"`
	Value     string `validate:"omitempty,hours"`
	OverT     string `validate:"omitempty,hours"`
	Reason    string `validate:"-"`

	Variant Variant           `validate:"-"`
	Errors  map[string]string `validate:"-"`
}

func NewWorkRec(v Variant) *WorkRec {
	return &WorkRec{Variant: v, Errors: map[string]string{}}
}

// FromRecord pre-populates the form from a stored record.
func FromRecord(v Variant, rec *models.WorkRec) *WorkRec {
	f := NewWorkRec(v)
	f.Situation = rec.Situation
	f.Reason = rec.Reason
	f.BreakT = fmtFloat(rec.BreakT)
	f.Value = fmtFloat(rec.Value)
	f.OverT = fmtFloat(rec.OverT)
	if v == Full {
		f.WorkIn = fmtString(rec.WorkIn)
		f.WorkOut = fmtString(rec.WorkOut)
	}
	return f
}

// Bind reads the submitted field values. The absence variant never binds the
// clock fields, so a non-owner cannot smuggle clock times in.
func (f *WorkRec) Bind(r *http.Request) {
	f.Situation = r.FormValue("situation")
	f.BreakT = r.FormValue("break_t")
	f.Value = r.FormValue("value")
	f.OverT = r.FormValue("over_t")
	f.Reason = r.FormValue("reason")
	if f.Variant == Full {
		f.WorkIn = r.FormValue("work_in")
		f.WorkOut = r.FormValue("work_out")
	}
}

// Validate checks the field patterns and fills Errors with per-field
// messages. It reports whether the form is clean.
func (f *WorkRec) Validate() bool {
	f.Errors = map[string]string{}
	err := validate.Struct(f)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.Errors["form"] = "invalid form submission"
		return false
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "hhmm":
			f.Errors[fe.StructField()] = "enter a time as HH:MM"
		default:
			f.Errors[fe.StructField()] = "enter a number"
		}
	}
	return false
}

// Apply copies the validated fields onto the record. Empty optional fields
// become NULL. Clock times are only written by the full variant; an absence
// edit leaves recorded clock times untouched.
func (f *WorkRec) Apply(rec *models.WorkRec) {
	rec.Situation = f.Situation
	rec.Reason = f.Reason
	rec.BreakT = parseFloat(f.BreakT)
	rec.Value = parseFloat(f.Value)
	rec.OverT = parseFloat(f.OverT)
	if f.Variant == Full {
		rec.WorkIn = parseString(f.WorkIn)
		rec.WorkOut = parseString(f.WorkOut)
	}
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fmtFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func fmtString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
