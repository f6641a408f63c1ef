package permissions

import (
	"net/http"
	"testing"

	"github.com/rpupo63/blog-backend/models"
)

func TestActionFromMethod(t *testing.T) {
	tests := map[string]Action{
		http.MethodGet:     Read,
		http.MethodHead:    Read,
		http.MethodOptions: Read,
		http.MethodPost:    Create,
		http.MethodPut:     Update,
		http.MethodPatch:   Update,
		http.MethodDelete:  Delete,
	}
	for method, want := range tests {
		if got := ActionFromMethod(method); got != want {
			t.Errorf("ActionFromMethod(%s) = %v, want %v", method, got, want)
		}
	}
}

func TestIsOwnerOrReadOnly(t *testing.T) {
	owner := &models.User{ID: 1}
	other := &models.User{ID: 2}

	tests := []struct {
		name   string
		caller *models.User
		action Action
		want   bool
	}{
		{"anonymous read", nil, Read, true},
		{"other user read", other, Read, true},
		{"owner update", owner, Update, true},
		{"other user update", other, Update, false},
		{"anonymous update", nil, Update, false},
		{"other user delete", other, Delete, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwnerOrReadOnly(tt.caller, owner, tt.action); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsOwner(t *testing.T) {
	if !IsOwner(&models.User{ID: 3}, &models.User{ID: 3}) {
		t.Error("expected a user to own their account")
	}
	if IsOwner(&models.User{ID: 3}, &models.User{ID: 4}) {
		t.Error("expected a user not to own another account")
	}
	if IsOwner(nil, &models.User{ID: 4}) {
		t.Error("expected anonymous caller to own nothing")
	}
}

func TestCanModifyPost(t *testing.T) {
	author := &models.User{ID: 1}
	other := &models.User{ID: 2}
	post := &models.BlogPost{ID: 10, AuthorID: author.ID}

	tests := []struct {
		name   string
		caller *models.User
		action Action
		want   bool
	}{
		{"anyone reads", nil, Read, true},
		{"authenticated creates", other, Create, true},
		{"anonymous cannot create", nil, Create, false},
		{"author updates", author, Update, true},
		{"author deletes", author, Delete, true},
		{"non author cannot update", other, Update, false},
		{"non author cannot delete", other, Delete, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModifyPost(tt.caller, post, tt.action); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanModifyComment(t *testing.T) {
	author := &models.User{ID: 1}
	other := &models.User{ID: 2}
	parent := uint(5)
	reply := &models.Comment{ID: 6, AuthorID: author.ID, ParentID: &parent}

	if !CanModifyComment(author, reply, Update) {
		t.Error("expected author to update their reply")
	}
	if CanModifyComment(other, reply, Update) {
		t.Error("expected non author to be denied")
	}
	if CanModifyComment(other, reply, Delete) {
		t.Error("expected non author delete to be denied")
	}
	if !CanModifyComment(nil, reply, Read) {
		t.Error("expected reads to be public")
	}
}
