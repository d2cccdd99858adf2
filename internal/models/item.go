package models

import "time"

// Item is a collectible catalog entry, e.g. a hero. Names are unique across categories.
type Item struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Category  string    `gorm:"type:text;not null;index" json:"category"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Item) TableName() string {
	return "items"
}
