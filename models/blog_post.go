package models

import (
	"time"

	"gorm.io/gorm"
)

// BlogPost represents a complete blog post with metadata
type BlogPost struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Thumbnail string    `json:"thumbnail" gorm:"type:text"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Slug      string    `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    User      `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Tags      []Tag     `json:"tags" gorm:"many2many:blog_post_tags;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// title as it was when the row was loaded; never persisted
	originalTitle string
}

func (p *BlogPost) AfterFind(tx *gorm.DB) error {
	p.originalTitle = p.Title
	return nil
}

func (p *BlogPost) AfterSave(tx *gorm.DB) error {
	p.originalTitle = p.Title
	return nil
}

// NeedsSlug reports whether the slug must be derived again before saving:
// either none exists yet or the title changed since the post was loaded.
func (p *BlogPost) NeedsSlug() bool {
	return p.Slug == "" || p.Title != p.originalTitle
}

// ReservedPostSlugs collide with fixed routes under /blogs.
var ReservedPostSlugs = []string{"tags", "tag", "user", "comments"}
