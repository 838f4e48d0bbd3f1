package models

import (
	"time"
)

// User is an operator account for the editing UI. Card-holders are Persons,
// not Users; they never log in.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	FullName     string    `gorm:"not null;size:200" json:"full_name"`
	PasswordHash string    `gorm:"not null" json:"-"`
}

func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}
