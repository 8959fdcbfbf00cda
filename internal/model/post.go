package model

import "time"

// MaxMessageLength caps the size of a single post.
const MaxMessageLength = 2000

// Post is a short message written by a user.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// PostWithUsername is a post joined with its author's username.
type PostWithUsername struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// OwnedBy reports whether the post was written by userID.
func (p *PostWithUsername) OwnedBy(userID uint) bool {
	return p != nil && p.UserID == userID
}
