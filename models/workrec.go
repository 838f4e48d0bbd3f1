package models

import (
	"time"
)

// WorkRec is one person's attendance record for one calendar day, keyed by
// (person_id, yymm, dd). A missing row means the day has not been recorded
// yet. No soft delete: destroying a day must free the composite key so the
// day can be recorded again.
type WorkRec struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	PersonID  uint      `gorm:"not null;uniqueIndex:idx_workrecs_day" json:"person_id"`
	Person    Person    `gorm:"foreignKey:PersonID" json:"person,omitempty"`
	Yymm      string    `gorm:"column:yymm;not null;size:6;uniqueIndex:idx_workrecs_day" json:"yymm"`
	DD        int       `gorm:"column:dd;not null;uniqueIndex:idx_workrecs_day" json:"dd"`
	Situation string    `gorm:"size:200" json:"situation"`
	WorkIn    *string   `gorm:"size:5" json:"work_in"`
	WorkOut   *string   `gorm:"size:5" json:"work_out"`
	BreakT    *float64  `json:"break_t"`
	Value     *float64  `json:"value"`
	OverT     *float64  `json:"over_t"`
	Reason    string    `gorm:"size:200" json:"reason"`
	Enabled   bool      `gorm:"not null;default:false" json:"enabled"`
}
