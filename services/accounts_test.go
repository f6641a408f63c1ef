package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpupo63/blog-backend/mocks"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	db, store := mocks.NewDatabase()

	user := models.User{Email: "Ada@Example.COM", Username: "ada.lovelace", FirstName: "Ada", LastName: "Lovelace"}
	if err := services.CreateUser(ctx, db.UserRepo(), &user, "Abcdef1!"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	if user.Email != "Ada@example.com" {
		t.Errorf("expected normalized email, got %q", user.Email)
	}
	if user.Password == "Abcdef1!" || !user.CheckPassword("Abcdef1!") {
		t.Error("expected password to be stored as a hash")
	}
	if !user.IsActive || user.IsStaff || user.IsSuperuser {
		t.Errorf("unexpected flags on regular user: %+v", user)
	}
	if store.UserCount() != 1 {
		t.Errorf("expected 1 stored user, got %d", store.UserCount())
	}
}

func TestCreateUserRequiresFields(t *testing.T) {
	ctx := context.Background()
	db, _ := mocks.NewDatabase()

	tests := []struct {
		name     string
		user     models.User
		password string
		want     error
	}{
		{"no email", models.User{Username: "someone"}, "Abcdef1!", services.ErrEmailRequired},
		{"no username", models.User{Email: "a@b.co"}, "Abcdef1!", services.ErrUsernameRequired},
		{"no password", models.User{Email: "a@b.co", Username: "someone"}, "", services.ErrPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := services.CreateUser(ctx, db.UserRepo(), &tt.user, tt.password); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateSuperuser(t *testing.T) {
	ctx := context.Background()
	db, _ := mocks.NewDatabase()

	user, err := services.CreateSuperuser(ctx, db.UserRepo(), "root@Example.com", "rootadmin", "Abcdef1!")
	if err != nil {
		t.Fatalf("CreateSuperuser: %v", err)
	}
	if !user.IsStaff || !user.IsSuperuser || !user.IsActive {
		t.Errorf("expected privileged active account, got %+v", user)
	}

	stored, err := db.UserRepo().FindByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if !stored.IsSuperuser {
		t.Error("expected stored user to be a superuser")
	}

	if _, err := services.CreateSuperuser(ctx, db.UserRepo(), "root@example.com", "another", "Abcdef1!"); !errors.Is(err, services.ErrUserExists) {
		t.Errorf("expected duplicate email to be rejected, got %v", err)
	}
	if _, err := services.CreateSuperuser(ctx, db.UserRepo(), "", "another", "Abcdef1!"); !errors.Is(err, services.ErrEmailRequired) {
		t.Errorf("expected missing email to be rejected, got %v", err)
	}
}

func TestDeleteImages(t *testing.T) {
	ctx := context.Background()
	images := mocks.NewImageStore()
	keys := []string{"media/thumbnails/1.png", "", "media/images/profile/2.jpg", "media/thumbnails/3.gif"}

	if err := services.DeleteImages(ctx, images, keys); err != nil {
		t.Fatalf("DeleteImages: %v", err)
	}
	if len(images.Deleted) != 3 {
		t.Errorf("expected 3 deletions, empty keys skipped, got %v", images.Deleted)
	}
}
