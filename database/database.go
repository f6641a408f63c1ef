package database

import (
	"context"
	"time"

	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
)

type UserRepository interface {
	Add(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error
	// Delete removes the user with every post, comment and reply they own.
	Delete(ctx context.Context, id uint) error
	// OwnedImageKeys lists stored images that go away with the user.
	OwnedImageKeys(ctx context.Context, id uint) ([]string, error)
}

// PostFilter narrows a post listing. Zero values mean no filter.
type PostFilter struct {
	AuthorID uint
	TagID    uint
}

type BlogPostRepository interface {
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]models.BlogPost, int64, error)
	FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error)
	FindByID(ctx context.Context, id uint) (*models.BlogPost, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	Add(ctx context.Context, post *models.BlogPost) error
	// Update saves post. A non nil tags replaces the post's tag set.
	Update(ctx context.Context, post *models.BlogPost, tags *[]models.Tag) error
	Delete(ctx context.Context, id uint) error
}

type TagRepository interface {
	FindAll(ctx context.Context) ([]models.Tag, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tag, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
	Add(ctx context.Context, tag *models.Tag) error
}

type CommentRepository interface {
	// ListTopLevel returns the post's comments without a parent, each with
	// its replies loaded, oldest first.
	ListTopLevel(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, int64, error)
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	Add(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type Database struct {
	db           *gorm.DB
	userRepo     UserRepository
	blogPostRepo BlogPostRepository
	tagRepo      TagRepository
	commentRepo  CommentRepository
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		userRepo:     NewUserRepo(db),
		blogPostRepo: NewBlogPostRepo(db),
		tagRepo:      NewTagRepo(db),
		commentRepo:  NewCommentRepo(db),
	}
}

// NewFromRepos builds a Database from arbitrary implementations, e.g. the
// in-memory ones used in tests.
func NewFromRepos(users UserRepository, posts BlogPostRepository, tags TagRepository, comments CommentRepository) Database {
	return Database{
		userRepo:     users,
		blogPostRepo: posts,
		tagRepo:      tags,
		commentRepo:  comments,
	}
}

// Accessor methods for each repository

func (d Database) UserRepo() UserRepository {
	return d.userRepo
}

func (d Database) BlogPostRepo() BlogPostRepository {
	return d.blogPostRepo
}

func (d Database) TagRepo() TagRepository {
	return d.tagRepo
}

func (d Database) CommentRepo() CommentRepository {
	return d.commentRepo
}

// Ping checks the primary connection. Databases built from repos always pass.
func (d Database) Ping(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
