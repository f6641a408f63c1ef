package database

import (
	"context"

	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BlogPostRepo struct {
	db *gorm.DB
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{db}
}

func (f PostFilter) scope(db *gorm.DB) *gorm.DB {
	if f.AuthorID != 0 {
		db = db.Where("blog_posts.author_id = ?", f.AuthorID)
	}
	if f.TagID != 0 {
		db = db.Where("blog_posts.id IN (SELECT blog_post_id FROM blog_post_tags WHERE tag_id = ?)", f.TagID)
	}
	return db
}

// List returns one page of posts, newest first, and the total matching count
func (r *BlogPostRepo) List(ctx context.Context, filter PostFilter, offset, limit int) ([]models.BlogPost, int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BlogPost{}).Scopes(filter.scope).Count(&count).Error
	if err != nil {
		return nil, 0, err
	}

	var posts []models.BlogPost
	err = r.db.WithContext(ctx).
		Scopes(filter.scope).
		Preload("Author").
		Preload("Tags").
		Order("blog_posts.created_at DESC, blog_posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	return posts, count, err
}

// FindBySlug returns a blog post by its slug
func (r *BlogPostRepo) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Preload("Author").Preload("Tags").Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// FindByID returns a blog post by its ID
func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.WithContext(ctx).Preload("Author").Preload("Tags").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BlogPostRepo) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BlogPost{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

// Add inserts a new blog post and links its existing tags
func (r *BlogPostRepo) Add(ctx context.Context, post *models.BlogPost) error {
	return r.db.WithContext(ctx).Omit("Author", "Tags.*").Create(post).Error
}

// Update updates an existing blog post in the database
func (r *BlogPostRepo) Update(ctx context.Context, post *models.BlogPost, tags *[]models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(post).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if err := tx.Model(post).Association("Tags").Replace(*tags); err != nil {
			return err
		}
		post.Tags = *tags
		return nil
	})
}

// Delete removes a blog post with its comments, replies and tag links
func (r *BlogPostRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
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
		if err := tx.Exec("DELETE FROM blog_post_tags WHERE blog_post_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.BlogPost{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
