// Package permissions holds the object level access rules as pure functions
// of caller, resource and action.
package permissions

import (
	"net/http"

	"github.com/rpupo63/blog-backend/models"
)

type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
)

func (a Action) Safe() bool {
	return a == Read
}

// ActionFromMethod maps an HTTP method to the action it performs.
func ActionFromMethod(method string) Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return Read
	case http.MethodPost:
		return Create
	case http.MethodPut, http.MethodPatch:
		return Update
	case http.MethodDelete:
		return Delete
	}
	return Update
}

// IsOwner allows the caller to act on their own account only.
func IsOwner(caller *models.User, target *models.User) bool {
	return caller != nil && target != nil && caller.ID == target.ID
}

// IsOwnerOrReadOnly allows anyone to read and only the owner to write.
func IsOwnerOrReadOnly(caller *models.User, target *models.User, action Action) bool {
	return action.Safe() || IsOwner(caller, target)
}

// CanCreate allows any authenticated caller to create.
func CanCreate(caller *models.User) bool {
	return caller != nil
}

// CanModifyPost allows reads by anyone and writes by the post's author.
func CanModifyPost(caller *models.User, post *models.BlogPost, action Action) bool {
	switch action {
	case Read:
		return true
	case Create:
		return CanCreate(caller)
	}
	return caller != nil && post != nil && post.AuthorID == caller.ID
}

// CanModifyComment is the same author rule applied to comments and replies.
func CanModifyComment(caller *models.User, comment *models.Comment, action Action) bool {
	switch action {
	case Read:
		return true
	case Create:
		return CanCreate(caller)
	}
	return caller != nil && comment != nil && comment.AuthorID == caller.ID
}
