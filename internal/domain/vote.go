package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoteType is the direction of a vote. Only VoteUpvote and VoteDownvote are
// recognized; anything else is a validation failure.
type VoteType string

const (
	VoteUpvote   VoteType = "upvote"
	VoteDownvote VoteType = "downvote"
)

// Valid reports whether t is one of the recognized vote types.
func (t VoteType) Valid() bool {
	return t == VoteUpvote || t == VoteDownvote
}

// Vote is a single user's vote on a meme. The unique index over
// (user_id, meme_id) enforces the at-most-one-vote invariant at the
// storage layer.
type Vote struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;uniqueIndex:idx_votes_user_meme" json:"userId"`
	MemeID    string    `gorm:"type:text;not null;uniqueIndex:idx_votes_user_meme;index:idx_votes_meme" json:"memeId"`
	Type      VoteType  `gorm:"column:vote_type;type:text;not null" json:"voteType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Vote) TableName() string {
	return "votes"
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return nil
}
