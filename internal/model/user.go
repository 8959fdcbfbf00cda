package model

import "time"

// User is a board member identified by a verified email address.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"-" gorm:"uniqueIndex;size:255;not null"` // Stored lower-case, never rendered
	Username  *string   `json:"username" gorm:"uniqueIndex;size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// DisplayName returns the username or an empty string when none is set.
func (u *User) DisplayName() string {
	if u == nil || u.Username == nil {
		return ""
	}
	return *u.Username
}
