package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Slug       string    `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	CoverImage string    `json:"coverImage"`
	Content    string    `gorm:"type:text;not null" json:"content"` // markdown source
	Published  bool      `gorm:"default:true" json:"published"`
	AuthorID   string    `gorm:"size:36;not null;index" json:"authorId"`
	Author     User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Filled at query time, not stored
	Score        int `gorm:"-" json:"score"`
	CommentCount int `gorm:"-" json:"commentCount"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
