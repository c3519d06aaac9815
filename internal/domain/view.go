package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// View is a dedup record backing the meme view counter. For authenticated
// viewers UserID is set and the unique (meme_id, user_id) index makes the
// record a lifetime dedup; the index ignores anonymous rows because NULL
// user ids compare distinct. Anonymous viewers are tracked per IP within a
// rolling window instead.
type View struct {
	ID       string    `gorm:"type:text;primaryKey" json:"id"`
	MemeID   string    `gorm:"type:text;not null;uniqueIndex:idx_views_meme_user;index:idx_views_meme_ip,priority:1" json:"memeId"`
	UserID   *string   `gorm:"type:text;uniqueIndex:idx_views_meme_user" json:"userId,omitempty"`
	IP       string    `gorm:"type:text;index:idx_views_meme_ip,priority:2" json:"ip,omitempty"`
	ViewedAt time.Time `gorm:"index:idx_views_meme_ip,priority:3" json:"viewedAt"`
}

func (View) TableName() string {
	return "views"
}

// BeforeCreate assigns a UUID and timestamp when the caller did not set them.
func (v *View) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.ViewedAt.IsZero() {
		v.ViewedAt = time.Now()
	}
	return nil
}
