package models

// Request payloads. Pointer fields distinguish "absent" from "empty" so the
// same struct serves full and partial updates.

type RegisterRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Bio             string `json:"bio"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type ProfileUpdateRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

type BlogPostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Tags    *[]uint `json:"tags"`
}

type CommentRequest struct {
	Content *string `json:"content"`
}

type TagRequest struct {
	Name string `json:"name"`
}
