package models

import "time"

// Selection is the per-user session: the item the next image will be credited to.
// A nil ItemID means no item is selected.
type Selection struct {
	UserID    string    `gorm:"primaryKey;type:text" json:"userId"`
	ItemID    *uint     `json:"itemId"`
	UpdatedAt time.Time `json:"updatedAt"`

	Item *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

func (Selection) TableName() string {
	return "selections"
}
