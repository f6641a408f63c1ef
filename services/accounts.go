package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rpupo63/blog-backend/models"
)

// UserStore is what account creation needs from persistence.
type UserStore interface {
	Add(ctx context.Context, user *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

var (
	ErrEmailRequired    = errors.New("users must have an email address")
	ErrUsernameRequired = errors.New("users must have a username")
	ErrPasswordRequired = errors.New("users must have a password")
	ErrUserExists       = errors.New("a user with this email or username already exists")
)

// CreateUser hashes password and stores user as a regular active account.
func CreateUser(ctx context.Context, store UserStore, user *models.User, password string) error {
	user.Email = models.NormalizeEmail(user.Email)
	if user.Email == "" {
		return ErrEmailRequired
	}
	if strings.TrimSpace(user.Username) == "" {
		return ErrUsernameRequired
	}
	if password == "" {
		return ErrPasswordRequired
	}
	if err := user.HashPassword(password); err != nil {
		return err
	}
	user.IsActive = true
	return store.Add(ctx, user)
}

// CreateSuperuser creates an active staff account with every permission.
func CreateSuperuser(ctx context.Context, store UserStore, email, username, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(username) == "" {
		return nil, ErrUsernameRequired
	}

	emailTaken, err := store.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	usernameTaken, err := store.UsernameExists(ctx, username)
	if err != nil {
		return nil, err
	}
	if emailTaken || usernameTaken {
		return nil, ErrUserExists
	}

	user := &models.User{
		Email:       email,
		Username:    username,
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := CreateUser(ctx, store, user, password); err != nil {
		return nil, err
	}
	return user, nil
}
