package models

import "gorm.io/gorm"

// Tag is shared between posts; a post has many tags and a tag many posts.
type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:100;not null"`
	Slug string `json:"slug" gorm:"size:100;not null;uniqueIndex"`
}

func (t *Tag) BeforeSave(tx *gorm.DB) error {
	t.Normalize()
	return nil
}

// Normalize capitalizes the name and fills the slug when it is empty.
func (t *Tag) Normalize() {
	t.Name = Capitalize(t.Name)
	if t.Slug == "" {
		t.Slug = Slugify(t.Name)
	}
}
