package models

import "time"

// Screenshot is the stored image behind an accepted contribution.
// (user_id, content_hash) is unique: the same bytes are accepted once per user.
type Screenshot struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"type:text;not null;uniqueIndex:idx_screenshots_user_hash,priority:1" json:"userId"`
	ItemID      uint      `gorm:"not null;index" json:"itemId"`
	ImageData   []byte    `gorm:"not null" json:"-"`
	ContentHash string    `gorm:"type:text;not null;uniqueIndex:idx_screenshots_user_hash,priority:2" json:"contentHash"`
	MimeType    string    `gorm:"type:text" json:"mimeType"`
	CreatedAt   time.Time `json:"createdAt"`

	User User `gorm:"foreignKey:UserID;references:UserID" json:"-"`
	Item Item `gorm:"foreignKey:ItemID" json:"-"`
}

func (Screenshot) TableName() string {
	return "screenshots"
}

// Contribution is one accepted submission credited to a user. Rows are append-only.
type Contribution struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"type:text;not null;index" json:"userId"`
	ItemID       uint      `gorm:"not null;index" json:"itemId"`
	ScreenshotID uint      `gorm:"not null;uniqueIndex" json:"screenshotId"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`

	User       User       `gorm:"foreignKey:UserID;references:UserID" json:"-"`
	Item       Item       `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Screenshot Screenshot `gorm:"foreignKey:ScreenshotID" json:"-"`
}

func (Contribution) TableName() string {
	return "contributions"
}
