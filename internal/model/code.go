package model

import "time"

// VerificationCode is a one-time login code sent to a user's email.
// A user may hold several outstanding codes; expired ones are swept.
type VerificationCode struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_codes_user_code"`
	Code      string    `json:"-" gorm:"size:6;not null;index:idx_codes_user_code"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the short table name used by the SQL statements.
func (VerificationCode) TableName() string {
	return "codes"
}
