package database

import (
	"context"
	"time"

	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// Add inserts a new user into the database
func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID returns a user by its ID
func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// Update updates an existing user in the database
func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

// Delete removes the user and everything they own in one transaction. The
// foreign keys cascade as well; deleting explicitly keeps the behavior
// independent of how the schema was created.
func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.BlogPost{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}

		topLevel := tx.Model(&models.Comment{}).Where("parent_id IS NULL AND author_id = ?", id)
		if len(postIDs) > 0 {
			topLevel = tx.Model(&models.Comment{}).
				Where("parent_id IS NULL AND (author_id = ? OR post_id IN ?)", id, postIDs)
		}
		var commentIDs []uint
		if err := topLevel.Pluck("id", &commentIDs).Error; err != nil {
			return err
		}

		if len(commentIDs) > 0 {
			if err := tx.Where("parent_id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if len(postIDs) > 0 {
			if err := tx.Exec("DELETE FROM blog_post_tags WHERE blog_post_id IN ?", postIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.BlogPost{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&models.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *UserRepo) OwnedImageKeys(ctx context.Context, id uint) ([]string, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Select("profile_photo").First(&user, id).Error; err != nil {
		return nil, err
	}

	var thumbnails []string
	err := r.db.WithContext(ctx).Model(&models.BlogPost{}).
		Where("author_id = ? AND thumbnail <> ''", id).
		Pluck("thumbnail", &thumbnails).Error
	if err != nil {
		return nil, err
	}

	keys := thumbnails
	if user.ProfilePhoto != "" {
		keys = append(keys, user.ProfilePhoto)
	}
	return keys, nil
}
