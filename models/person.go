package models

import (
	"time"
)

// Person is a tracked member whose attendance is recorded. IDM is the UID of
// the member's identity card, matched against the live presence cache.
type Person struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"not null;size:200" json:"name"`
	IDM       string    `gorm:"column:idm;index;size:64" json:"idm"`
	WorkRecs  []WorkRec `gorm:"foreignKey:PersonID" json:"work_recs,omitempty"`
}
