package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a registered account. The password is stored only as a
// bcrypt hash and never serialized.
type User struct {
	ID             string    `gorm:"type:text;primaryKey" json:"id"`
	Username       string    `gorm:"type:text;not null;uniqueIndex:idx_users_username" json:"username"`
	Email          string    `gorm:"type:text;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash   string    `gorm:"type:text;not null" json:"-"`
	ProfilePicture string    `gorm:"type:text" json:"profilePicture,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
