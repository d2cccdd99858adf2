package models

import (
	"time"
)

// User is a participant, keyed by the messenger's identity.
// UserID never changes after creation; CreatedAt is the registration order.
type User struct {
	UserID      string    `gorm:"primaryKey;type:text;column:user_id" json:"userId"`
	DisplayName string    `gorm:"type:text" json:"displayName"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Badges in award order, loaded from user_badges.
	Badges []string `gorm:"-" json:"badges"`
}

func (User) TableName() string {
	return "users"
}

// HasBadge reports whether the badge is already in the loaded set.
func (u *User) HasBadge(name string) bool {
	for _, b := range u.Badges {
		if b == name {
			return true
		}
	}
	return false
}
