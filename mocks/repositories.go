package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"gorm.io/gorm"
)

// Store is an in-memory stand in for the postgres schema. It keeps the same
// uniqueness rules and cascades so handlers can be tested without a database.
type Store struct {
	mu       sync.Mutex
	users    map[uint]models.User
	posts    map[uint]models.BlogPost
	postTags map[uint][]uint
	tags     map[uint]models.Tag
	comments map[uint]models.Comment
	nextID   map[string]uint
	clock    time.Time

	// Err, when set, is returned by every repository call.
	Err error
}

func NewStore() *Store {
	return &Store{
		users:    map[uint]models.User{},
		posts:    map[uint]models.BlogPost{},
		postTags: map[uint][]uint{},
		tags:     map[uint]models.Tag{},
		comments: map[uint]models.Comment{},
		nextID:   map[string]uint{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewDatabase wires a fresh Store into a database.Database.
func NewDatabase() (database.Database, *Store) {
	s := NewStore()
	return database.NewFromRepos(&UserRepo{s}, &BlogPostRepo{s}, &TagRepo{s}, &CommentRepo{s}), s
}

// now advances a fake clock so creation order is always observable.
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id(kind string) uint {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

func (s *Store) PostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

func (s *Store) CommentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

// loadPost returns a copy with author and tags attached, as if preloaded.
func (s *Store) loadPost(p models.BlogPost) *models.BlogPost {
	p.Author = s.users[p.AuthorID]
	p.Tags = []models.Tag{}
	for _, tagID := range s.postTags[p.ID] {
		if tag, ok := s.tags[tagID]; ok {
			p.Tags = append(p.Tags, tag)
		}
	}
	p.AfterFind(nil)
	return &p
}

func (s *Store) loadComment(c models.Comment) *models.Comment {
	c.Author = s.users[c.AuthorID]
	c.Post = nil
	c.Replies = []models.Comment{}
	for _, reply := range s.sortedComments(func(r models.Comment) bool {
		return r.ParentID != nil && *r.ParentID == c.ID
	}) {
		reply.Author = s.users[reply.AuthorID]
		reply.Replies = nil
		c.Replies = append(c.Replies, reply)
	}
	return &c
}

func (s *Store) sortedComments(keep func(models.Comment) bool) []models.Comment {
	var out []models.Comment
	for _, c := range s.comments {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Store) deleteCommentTree(id uint) {
	for cid, c := range s.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(s.comments, cid)
		}
	}
	delete(s.comments, id)
}

func (s *Store) deletePost(id uint) {
	for cid, c := range s.comments {
		if c.PostID != nil && *c.PostID == id {
			s.deleteCommentTree(cid)
		}
	}
	delete(s.postTags, id)
	delete(s.posts, id)
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type UserRepo struct{ s *Store }

func (r *UserRepo) Add(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = r.s.id("user")
	user.DateJoined = r.s.now()
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, u := range r.s.users {
		if id != user.ID && (u.Email == user.Email || u.Username == user.Username) {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = &at
	r.s.users[id] = u
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for pid, p := range r.s.posts {
		if p.AuthorID == id {
			r.s.deletePost(pid)
		}
	}
	for cid, c := range r.s.comments {
		if c.AuthorID == id {
			r.s.deleteCommentTree(cid)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) OwnedImageKeys(ctx context.Context, id uint) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var keys []string
	for _, p := range r.s.posts {
		if p.AuthorID == id && p.Thumbnail != "" {
			keys = append(keys, p.Thumbnail)
		}
	}
	if u.ProfilePhoto != "" {
		keys = append(keys, u.ProfilePhoto)
	}
	sort.Strings(keys)
	return keys, nil
}

type BlogPostRepo struct{ s *Store }

func (r *BlogPostRepo) List(ctx context.Context, filter database.PostFilter, offset, limit int) ([]models.BlogPost, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}

	var matched []models.BlogPost
	for _, p := range r.s.posts {
		if filter.AuthorID != 0 && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.TagID != 0 && !containsID(r.s.postTags[p.ID], filter.TagID) {
			continue
		}
		matched = append(matched, *r.s.loadPost(p))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})
	return page(matched, offset, limit), int64(len(matched)), nil
}

func (r *BlogPostRepo) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, p := range r.s.posts {
		if p.Slug == slug {
			return r.s.loadPost(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	p, ok := r.s.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.loadPost(p), nil
}

func (r *BlogPostRepo) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for id, p := range r.s.posts {
		if id != excludeID && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *BlogPostRepo) Add(ctx context.Context, post *models.BlogPost) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, p := range r.s.posts {
		if p.Slug == post.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := r.s.users[post.AuthorID]; !ok {
		return gorm.ErrForeignKeyViolated
	}

	post.ID = r.s.id("post")
	post.CreatedAt = r.s.now()
	post.UpdatedAt = post.CreatedAt
	r.s.postTags[post.ID] = tagIDs(post.Tags)

	stored := *post
	stored.Author = models.User{}
	stored.Tags = nil
	r.s.posts[post.ID] = stored
	post.AfterSave(nil)
	return nil
}

func (r *BlogPostRepo) Update(ctx context.Context, post *models.BlogPost, tags *[]models.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.posts[post.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, p := range r.s.posts {
		if id != post.ID && p.Slug == post.Slug {
			return gorm.ErrDuplicatedKey
		}
	}

	post.UpdatedAt = r.s.now()
	if tags != nil {
		r.s.postTags[post.ID] = tagIDs(*tags)
		post.Tags = *tags
	}

	stored := *post
	stored.Author = models.User{}
	stored.Tags = nil
	r.s.posts[post.ID] = stored
	post.AfterSave(nil)
	return nil
}

func (r *BlogPostRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.posts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.deletePost(id)
	return nil
}

type TagRepo struct{ s *Store }

func (r *TagRepo) FindAll(ctx context.Context) ([]models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	tags := []models.Tag{}
	for _, t := range r.s.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Name != tags[j].Name {
			return tags[i].Name < tags[j].Name
		}
		return tags[i].ID < tags[j].ID
	})
	return tags, nil
}

func (r *TagRepo) FindBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, t := range r.s.tags {
		if t.Slug == slug {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *TagRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	tags := []models.Tag{}
	for _, id := range ids {
		if t, ok := r.s.tags[id]; ok && !containsID(tagIDs(tags), id) {
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (r *TagRepo) Add(ctx context.Context, tag *models.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	tag.Normalize()
	for _, t := range r.s.tags {
		if t.Slug == tag.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	tag.ID = r.s.id("tag")
	r.s.tags[tag.ID] = *tag
	return nil
}

type CommentRepo struct{ s *Store }

func (r *CommentRepo) ListTopLevel(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var out []models.Comment
	for _, c := range r.s.sortedComments(func(c models.Comment) bool {
		return c.ParentID == nil && c.PostID != nil && *c.PostID == postID
	}) {
		out = append(out, *r.s.loadComment(c))
	}
	return page(out, offset, limit), int64(len(out)), nil
}

func (r *CommentRepo) FindByID(ctx context.Context, id uint) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.s.loadComment(c), nil
}

func (r *CommentRepo) Add(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if comment.PostID != nil {
		if _, ok := r.s.posts[*comment.PostID]; !ok {
			return gorm.ErrForeignKeyViolated
		}
	}
	if comment.ParentID != nil {
		if _, ok := r.s.comments[*comment.ParentID]; !ok {
			return gorm.ErrForeignKeyViolated
		}
	}
	comment.ID = r.s.id("comment")
	comment.CreatedAt = r.s.now()
	comment.UpdatedAt = comment.CreatedAt

	stored := *comment
	stored.Author = models.User{}
	stored.Replies = nil
	r.s.comments[comment.ID] = stored
	return nil
}

func (r *CommentRepo) Update(ctx context.Context, comment *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.comments[comment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	comment.UpdatedAt = r.s.now()

	stored := *comment
	stored.Author = models.User{}
	stored.Replies = nil
	r.s.comments[comment.ID] = stored
	return nil
}

func (r *CommentRepo) Delete(ctx context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.s.deleteCommentTree(id)
	return nil
}

func tagIDs(tags []models.Tag) []uint {
	ids := make([]uint, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}

func containsID(ids []uint, id uint) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
