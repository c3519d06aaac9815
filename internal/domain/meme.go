package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Caption style defaults applied when a creator does not specify them.
const (
	DefaultTextColor = "#FFFFFF"
	DefaultFontSize  = 36
)

// Anchor is a caption anchor point in percentages of the image (0-100).
type Anchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TextPosition holds the anchors for the top and bottom captions.
type TextPosition struct {
	Top    Anchor `gorm:"embedded;embeddedPrefix:top_" json:"top"`
	Bottom Anchor `gorm:"embedded;embeddedPrefix:bottom_" json:"bottom"`
}

// DefaultTextPosition centers both captions horizontally, near the top and
// bottom edges.
func DefaultTextPosition() TextPosition {
	return TextPosition{
		Top:    Anchor{X: 50, Y: 10},
		Bottom: Anchor{X: 50, Y: 90},
	}
}

// Meme is a captioned image owned by a user. Views and Flags are
// server-maintained counters; Views only ever increases.
type Meme struct {
	ID           string       `gorm:"type:text;primaryKey" json:"id"`
	CreatorID    string       `gorm:"type:text;not null;index:idx_memes_creator" json:"creatorId"`
	Creator      *User        `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	ImageURL     string       `gorm:"type:text;not null" json:"imageUrl"`
	TopText      string       `gorm:"type:text" json:"topText"`
	BottomText   string       `gorm:"type:text" json:"bottomText"`
	TextColor    string       `gorm:"type:text" json:"textColor"`
	FontSize     int          `json:"fontSize"`
	TextPosition TextPosition `gorm:"embedded;embeddedPrefix:pos_" json:"textPosition"`
	IsTemplate   bool         `json:"isTemplate"`
	Views        int64        `json:"views"`
	Flags        int64        `json:"flags"`
	CreatedAt    time.Time    `gorm:"index:idx_memes_created_at" json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (Meme) TableName() string {
	return "memes"
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (m *Meme) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}
