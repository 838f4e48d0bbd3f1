package forms

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"attendance/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func TestVariantFor(t *testing.T) {
	assert.Equal(t, Full, VariantFor("CARD1", "CARD1"))
	assert.Equal(t, Absence, VariantFor("CARD2", "CARD1"))
	assert.Equal(t, Absence, VariantFor("", "CARD1"))
}

func TestValidateClockPattern(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"", true},
		{"09:00", true},
		{"23:59", true},
		{"9:00", false},
		{"0900", false},
		{"09:0a", false},
		{"morning", false},
	}
	for _, tt := range tests {
		f := NewWorkRec(Full)
		f.WorkIn = tt.in
		assert.Equalf(t, tt.valid, f.Validate(), "work_in=%q", tt.in)
		if !tt.valid {
			assert.Equal(t, "enter a time as HH:MM", f.Errors["WorkIn"])
		}
	}
}

func TestValidateHoursPattern(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"", true},
		{"8", true},
		{"8.5", true},
		{"12.0", true},
		{"8.55", false}, // one decimal place only
		{".5", false},
		{"8.", false},
		{"-1", false},
		{"abc", false},
	}
	for _, tt := range tests {
		f := NewWorkRec(Full)
		f.Value = tt.in
		assert.Equalf(t, tt.valid, f.Validate(), "value=%q", tt.in)
		if !tt.valid {
			assert.Equal(t, "enter a number", f.Errors["Value"])
		}
	}
}

func TestBindAbsenceSkipsClockFields(t *testing.T) {
	form := url.Values{
		"situation": {"office"},
		"work_in":   {"09:00"},
		"work_out":  {"18:00"},
		"value":     {"8.0"},
	}
	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f := NewWorkRec(Absence)
	f.Bind(req)

	assert.Equal(t, "office", f.Situation)
	assert.Equal(t, "8.0", f.Value)
	assert.Empty(t, f.WorkIn)
	assert.Empty(t, f.WorkOut)
}

func TestApplyFullVariant(t *testing.T) {
	f := NewWorkRec(Full)
	f.Situation = "office"
	f.WorkIn = "09:00"
	f.WorkOut = "18:00"
	f.BreakT = "1"
	f.Value = "8.0"
	f.Reason = "note"

	var rec models.WorkRec
	f.Apply(&rec)

	require.NotNil(t, rec.WorkIn)
	assert.Equal(t, "09:00", *rec.WorkIn)
	require.NotNil(t, rec.WorkOut)
	assert.Equal(t, "18:00", *rec.WorkOut)
	require.NotNil(t, rec.BreakT)
	assert.Equal(t, 1.0, *rec.BreakT)
	require.NotNil(t, rec.Value)
	assert.Equal(t, 8.0, *rec.Value)
	assert.Nil(t, rec.OverT)
	assert.Equal(t, "office", rec.Situation)
	assert.Equal(t, "note", rec.Reason)
}

func TestApplyAbsenceKeepsStoredClockTimes(t *testing.T) {
	rec := models.WorkRec{WorkIn: sptr("09:00"), WorkOut: sptr("18:00"), Value: fptr(8.0)}

	f := NewWorkRec(Absence)
	f.Situation = "hospital"
	f.Value = "4"
	f.Apply(&rec)

	require.NotNil(t, rec.WorkIn)
	assert.Equal(t, "09:00", *rec.WorkIn)
	require.NotNil(t, rec.WorkOut)
	assert.Equal(t, "18:00", *rec.WorkOut)
	require.NotNil(t, rec.Value)
	assert.Equal(t, 4.0, *rec.Value)
	assert.Equal(t, "hospital", rec.Situation)
}

func TestFromRecordFormatsStoredValues(t *testing.T) {
	rec := models.WorkRec{
		Situation: "office",
		WorkIn:    sptr("09:00"),
		BreakT:    fptr(1.0),
		Value:     fptr(7.5),
		Reason:    "note",
	}

	full := FromRecord(Full, &rec)
	assert.Equal(t, "09:00", full.WorkIn)
	assert.Equal(t, "1", full.BreakT)
	assert.Equal(t, "7.5", full.Value)
	assert.Equal(t, "", full.OverT)

	absence := FromRecord(Absence, &rec)
	assert.Empty(t, absence.WorkIn)
	assert.Equal(t, "7.5", absence.Value)
}
