package models

import "time"

// User is a registered messenger account. Token is the permanent bearer
// secret; PubKey is the client's public E2EE key, opaque to the server.
type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Username   string    `gorm:"size:255;not null;uniqueIndex" json:"username"`
	TelegramID *int64    `json:"-"`
	Token      string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	PubKey     *string   `gorm:"column:pubkey;type:text" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
