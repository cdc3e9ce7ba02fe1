package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vote target kinds. Closed set, validated at the API boundary.
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

func ValidTargetType(t string) bool {
	return t == TargetPost || t == TargetComment
}

// Vote is one user's vote on one target. The composite unique index is the
// ground truth for the one-vote-per-identity-per-target rule: concurrent
// duplicate casts resolve at the database, never by read-then-write.
type Vote struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_user_target" json:"userId"`
	TargetType string    `gorm:"size:10;not null;uniqueIndex:idx_user_target" json:"targetType"`
	TargetID   string    `gorm:"size:36;not null;uniqueIndex:idx_user_target;index:idx_target" json:"targetId"`
	Value      int       `gorm:"not null" json:"value"` // +1 or -1
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (v *Vote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}
