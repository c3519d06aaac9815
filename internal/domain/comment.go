package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxCommentLength caps comment bodies; exactly this length is accepted.
const MaxCommentLength = 140

// Comment is a short text reply attached to a meme.
type Comment struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;index:idx_comments_user" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MemeID    string    `gorm:"type:text;not null;index:idx_comments_meme" json:"memeId"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Comment) TableName() string {
	return "comments"
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
