package models

import "time"

// UserBadge is one member of a user's badge set. The composite primary key makes an
// award idempotent; Position keeps the order badges were earned in.
type UserBadge struct {
	UserID    string    `gorm:"primaryKey;type:text" json:"userId"`
	Badge     string    `gorm:"primaryKey;type:text" json:"badge"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	AwardedAt time.Time `json:"awardedAt"`

	User User `gorm:"foreignKey:UserID;references:UserID" json:"-"`
}

func (UserBadge) TableName() string {
	return "user_badges"
}
