package api

import (
	"time"

	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler     authHandler
	userHandler     userHandler
	blogPostHandler blogPostHandler
	tagHandler      tagHandler
	commentHandler  commentHandler
}

// ErrorBody is the error half of the response envelope
// @Description Error response structure
type ErrorBody struct {
	Type    string `json:"type" example:"Validation Error"`
	Message string `json:"message" example:"This field may not be blank."`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// UserResponse is a freshly registered account. Passwords never appear.
type UserResponse struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

type ProfileResponse struct {
	ID           uint      `json:"id"`
	ProfilePhoto *string   `json:"profile_photo"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Bio          string    `json:"bio"`
	DateJoined   time.Time `json:"date_joined"`
}

type AuthorResponse struct {
	ID           uint    `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	ProfilePhoto *string `json:"profile_photo"`
}

type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostResponse omits the author in listings that are already scoped to one.
type PostResponse struct {
	ID        uint            `json:"id"`
	Thumbnail *string         `json:"thumbnail"`
	Title     string          `json:"title"`
	Slug      string          `json:"slug"`
	Author    *AuthorResponse `json:"author,omitempty"`
	Content   string          `json:"content"`
	Tags      []TagResponse   `json:"tags"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ReplyResponse struct {
	ID        uint           `json:"id"`
	Post      *uint          `json:"post"`
	Parent    *uint          `json:"parent"`
	Author    AuthorResponse `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type CommentResponse struct {
	ID        uint            `json:"id"`
	Post      *uint           `json:"post"`
	Parent    *uint           `json:"parent"`
	Author    AuthorResponse  `json:"author"`
	Content   string          `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Replies   []ReplyResponse `json:"replies"`
}

type TokensResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

func imageURL(images services.ImageStore, key string) *string {
	if key == "" {
		return nil
	}
	url := images.URL(key)
	return &url
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
	}
}

func newProfileResponse(u *models.User, images services.ImageStore) ProfileResponse {
	return ProfileResponse{
		ID:           u.ID,
		ProfilePhoto: imageURL(images, u.ProfilePhoto),
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Bio:          u.Bio,
		DateJoined:   u.DateJoined,
	}
}

func newAuthorResponse(u *models.User, images services.ImageStore) AuthorResponse {
	return AuthorResponse{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfilePhoto: imageURL(images, u.ProfilePhoto),
	}
}

func newTagResponses(tags []models.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return out
}

func newPostResponse(p *models.BlogPost, images services.ImageStore, withAuthor bool) PostResponse {
	resp := PostResponse{
		ID:        p.ID,
		Thumbnail: imageURL(images, p.Thumbnail),
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		Tags:      newTagResponses(p.Tags),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if withAuthor {
		author := newAuthorResponse(&p.Author, images)
		resp.Author = &author
	}
	return resp
}

func newPostResponses(posts []models.BlogPost, images services.ImageStore, withAuthor bool) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, newPostResponse(&posts[i], images, withAuthor))
	}
	return out
}

func newReplyResponse(c *models.Comment, images services.ImageStore) ReplyResponse {
	return ReplyResponse{
		ID:        c.ID,
		Post:      c.PostID,
		Parent:    c.ParentID,
		Author:    newAuthorResponse(&c.Author, images),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func newCommentResponse(c *models.Comment, images services.ImageStore) CommentResponse {
	replies := make([]ReplyResponse, 0, len(c.Replies))
	for i := range c.Replies {
		replies = append(replies, newReplyResponse(&c.Replies[i], images))
	}
	return CommentResponse{
		ID:        c.ID,
		Post:      c.PostID,
		Parent:    c.ParentID,
		Author:    newAuthorResponse(&c.Author, images),
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Replies:   replies,
	}
}
