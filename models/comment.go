package models

import "time"

// Comment is either attached to a post (top level, ParentID nil) or to
// another comment (a reply, PostID nil). Replies never have replies.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    *uint     `json:"post" gorm:"index"`
	Post      *BlogPost `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID  uint      `json:"author_id" gorm:"not null;index"`
	Author    User      `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"size:500;not null"`
	ParentID  *uint     `json:"parent" gorm:"index"`
	Replies   []Comment `json:"replies,omitempty" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
