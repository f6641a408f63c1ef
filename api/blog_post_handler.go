package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/permissions"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rpupo63/blog-backend/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	decoder      requestDecoder
	blogPostRepo database.BlogPostRepository
	tagRepo      database.TagRepository
	images       services.ImageStore
}

func newBlogPostHandler(blogPostRepo database.BlogPostRepository, tagRepo database.TagRepository, images services.ImageStore, decoder requestDecoder) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		decoder:      decoder,
		blogPostRepo: blogPostRepo,
		tagRepo:      tagRepo,
		images:       images,
	}
}

// listPosts returns all posts, newest first
// @Summary List blog posts
// @Tags Blog Posts
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Posts per page (max 25)"
// @Success 200 {object} PageResponse[PostResponse] "One page of posts"
// @Failure 404 {object} ErrorResponse "Not Found - Invalid page."
// @Router /blogs [get]
func (h blogPostHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writePage(w, r, database.PostFilter{}, true)
	}
}

// listPostsByUser returns the posts of one author
// @Summary List blog posts by author
// @Tags Blog Posts
// @Produce json
// @Param userID path int true "Author ID"
// @Success 200 {object} PageResponse[PostResponse] "One page of posts"
// @Router /blogs/user/{userID} [get]
func (h blogPostHandler) listPostsByUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userID", "user")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.writePage(w, r, database.PostFilter{AuthorID: userID}, false)
	}
}

// listPostsByTag returns the posts carrying a tag
// @Summary List blog posts by tag
// @Tags Blog Posts
// @Produce json
// @Param tagSlug path string true "Tag slug"
// @Success 200 {object} PageResponse[PostResponse] "One page of posts"
// @Failure 404 {object} ErrorResponse "Not Found - tag not found"
// @Router /blogs/tag/{tagSlug} [get]
func (h blogPostHandler) listPostsByTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tag, err := h.tagRepo.FindBySlug(r.Context(), chi.URLParam(r, "tagSlug"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "tag", err))
			return
		}
		h.writePage(w, r, database.PostFilter{TagID: tag.ID}, true)
	}
}

func (h blogPostHandler) writePage(w http.ResponseWriter, r *http.Request, filter database.PostFilter, withAuthor bool) {
	params, err := parsePageParams(r)
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}

	posts, count, err := h.blogPostRepo.List(r.Context(), filter, params.offset(), params.pageSize)
	if err != nil {
		h.responder.WriteError(w, wrapDatabaseError("list", "posts", err))
		return
	}

	page, err := newPageResponse(r, params, count, newPostResponses(posts, h.images, withAuthor))
	if err != nil {
		h.responder.WriteError(w, err)
		return
	}
	h.responder.WriteJSON(w, page)
}

// getPost retrieves a post by slug
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param post path string true "Post slug"
// @Success 200 {object} PostResponse "Post"
// @Failure 404 {object} ErrorResponse "Not Found - post not found"
// @Router /blogs/{post} [get]
func (h blogPostHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.blogPostRepo.FindBySlug(r.Context(), chi.URLParam(r, "post"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Post retrieved successfully", "post", newPostResponse(post, h.images, true))
	}
}

// createPost creates a post authored by the caller
// @Summary Create blog post
// @Description The slug is derived from the title. Tags are given as existing tag IDs.
// @Tags Blog Posts
// @Accept json,mpfd
// @Produce json
// @Param blogPost body models.BlogPostRequest true "Blog post data"
// @Success 201 {object} PostResponse "Created post"
// @Failure 400 {object} ErrorResponse "Validation Error"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Router /blogs [post]
func (h blogPostHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())
		if !permissions.CanCreate(caller) {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}

		req, thumbnail, err := h.readPost(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validation.ValidateBlogPost(req, false).Err(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		post := models.BlogPost{
			Title:    *req.Title,
			Content:  *req.Content,
			AuthorID: caller.ID,
		}
		if req.Tags != nil {
			if post.Tags, err = h.resolveTags(r.Context(), *req.Tags); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}
		if post.Slug, err = h.uniqueSlug(r.Context(), post.Title, 0); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("check", "post slug", err))
			return
		}

		if thumbnail != nil {
			if post.Thumbnail, err = h.images.Save(r.Context(), services.ThumbnailFolder, *thumbnail); err != nil {
				h.responder.WriteError(w, storeError("upload", err))
				return
			}
		}

		if err := h.blogPostRepo.Add(r.Context(), &post); err != nil {
			h.discardImage(r.Context(), post.Thumbnail)
			h.responder.WriteError(w, wrapDatabaseError("create", "post", err))
			return
		}

		created, err := h.blogPostRepo.FindByID(r.Context(), post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find created", "post", err))
			return
		}

		h.logger.Info().Uint("postID", created.ID).Str("slug", created.Slug).Msg("post created")
		h.responder.WriteSuccess(w, http.StatusCreated, "Post created successfully", "post", newPostResponse(created, h.images, true))
	}
}

// updatePost edits a post. Only the author may do this.
// @Summary Update blog post
// @Description PUT requires title and content, PATCH accepts any subset. A changed title gives a new slug.
// @Tags Blog Posts
// @Accept json,mpfd
// @Produce json
// @Param post path string true "Post slug"
// @Param blogPost body models.BlogPostRequest true "Blog post fields"
// @Success 200 {object} PostResponse "Updated post"
// @Failure 400 {object} ErrorResponse "Validation Error"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Failure 403 {object} ErrorResponse "Permission Denied - not the author"
// @Failure 404 {object} ErrorResponse "Not Found - post not found"
// @Router /blogs/{post} [put]
func (h blogPostHandler) updatePost(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		post, err := h.blogPostRepo.FindBySlug(r.Context(), chi.URLParam(r, "post"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if !permissions.CanModifyPost(caller, post, permissions.Update) {
			h.responder.WriteError(w, forbidden())
			return
		}

		req, thumbnail, err := h.readPost(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validation.ValidateBlogPost(req, partial).Err(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.Title != nil {
			post.Title = *req.Title
		}
		if req.Content != nil {
			post.Content = *req.Content
		}
		var tags *[]models.Tag
		if req.Tags != nil {
			resolved, err := h.resolveTags(r.Context(), *req.Tags)
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			tags = &resolved
		}
		if post.NeedsSlug() {
			if post.Slug, err = h.uniqueSlug(r.Context(), post.Title, post.ID); err != nil {
				h.responder.WriteError(w, wrapDatabaseError("check", "post slug", err))
				return
			}
		}

		oldThumbnail := post.Thumbnail
		if thumbnail != nil {
			if post.Thumbnail, err = h.images.Save(r.Context(), services.ThumbnailFolder, *thumbnail); err != nil {
				h.responder.WriteError(w, storeError("upload", err))
				return
			}
		}

		if err := h.blogPostRepo.Update(r.Context(), post, tags); err != nil {
			if thumbnail != nil {
				h.discardImage(r.Context(), post.Thumbnail)
			}
			h.responder.WriteError(w, wrapDatabaseError("update", "post", err))
			return
		}
		if thumbnail != nil {
			h.discardImage(r.Context(), oldThumbnail)
		}

		updated, err := h.blogPostRepo.FindByID(r.Context(), post.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find updated", "post", err))
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Post updated successfully", "post", newPostResponse(updated, h.images, true))
	}
}

// deletePost deletes a post with its comments. Only the author may do this.
// @Summary Delete blog post
// @Tags Blog Posts
// @Produce json
// @Param post path string true "Post slug"
// @Success 200 {object} map[string]any "Post deleted"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Failure 403 {object} ErrorResponse "Permission Denied - not the author"
// @Failure 404 {object} ErrorResponse "Not Found - post not found"
// @Router /blogs/{post} [delete]
func (h blogPostHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		post, err := h.blogPostRepo.FindBySlug(r.Context(), chi.URLParam(r, "post"))
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if !permissions.CanModifyPost(caller, post, permissions.Delete) {
			h.responder.WriteError(w, forbidden())
			return
		}

		if err := h.blogPostRepo.Delete(r.Context(), post.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "post", err))
			return
		}
		h.discardImage(r.Context(), post.Thumbnail)

		h.logger.Info().Uint("postID", post.ID).Msg("post deleted")
		h.responder.WriteSuccess(w, http.StatusOK, "Post deleted successfully", "", nil)
	}
}

// readPost decodes a JSON or multipart post payload and sanitizes the content.
func (h blogPostHandler) readPost(w http.ResponseWriter, r *http.Request) (models.BlogPostRequest, *services.Upload, error) {
	var req models.BlogPostRequest
	var thumbnail *services.Upload

	if isMultipart(r) {
		if err := h.decoder.parseMultipart(w, r); err != nil {
			return req, nil, err
		}
		req.Title = formValue(r, "title")
		req.Content = formValue(r, "content")
		tags, err := formUints(r, "tags")
		if err != nil {
			return req, nil, err
		}
		req.Tags = tags
		if thumbnail, err = h.decoder.formImage(r, "thumbnail"); err != nil {
			return req, nil, err
		}
	} else if err := h.decoder.decodeJSON(w, r, &req); err != nil {
		return req, nil, err
	}

	if req.Content != nil {
		content := services.SanitizeContent(*req.Content)
		req.Content = &content
	}
	return req, thumbnail, nil
}

// resolveTags loads the tags named by ids. Any unknown id fails validation.
func (h blogPostHandler) resolveTags(ctx context.Context, ids []uint) ([]models.Tag, error) {
	tags, err := h.tagRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, wrapDatabaseError("find", "tags", err)
	}
	found := make(map[uint]bool, len(tags))
	for _, t := range tags {
		found[t.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, errs.NewValidationError("tags", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		}
	}
	return tags, nil
}

func (h blogPostHandler) uniqueSlug(ctx context.Context, title string, postID uint) (string, error) {
	return models.UniqueSlug(ctx, title, "post", models.ReservedPostSlugs, func(ctx context.Context, slug string) (bool, error) {
		return h.blogPostRepo.SlugExists(ctx, slug, postID)
	})
}

func (h blogPostHandler) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.images.Delete(ctx, key); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("failed to delete image")
	}
}
