package api

import (
	"net/http"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/permissions"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rpupo63/blog-backend/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// commentKind selects the wording and payload shape of comment routes and
// reply routes, which otherwise share their handlers.
type commentKind struct {
	dataName string
	noun     string
	deleted  string
}

var (
	topLevelComment = commentKind{dataName: "comment", noun: "Comment", deleted: "Comment deleted successfully"}
	replyComment    = commentKind{dataName: "reply", noun: "Reply", deleted: "Reply deleted successfully."}
)

type commentHandler struct {
	responder    Responder
	logger       zerolog.Logger
	decoder      requestDecoder
	commentRepo  database.CommentRepository
	blogPostRepo database.BlogPostRepository
	images       services.ImageStore
}

func newCommentHandler(commentRepo database.CommentRepository, blogPostRepo database.BlogPostRepository, images services.ImageStore, decoder requestDecoder) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		decoder:      decoder,
		commentRepo:  commentRepo,
		blogPostRepo: blogPostRepo,
		images:       images,
	}
}

// listComments returns a post's top level comments with their replies nested
// @Summary List comments
// @Tags Comments
// @Produce json
// @Param post path int true "Post ID"
// @Param limit query int false "Comments per page (max 50)"
// @Param offset query int false "Comments to skip"
// @Success 200 {object} OffsetResponse[CommentResponse] "One page of comments"
// @Failure 404 {object} ErrorResponse "Not Found - post not found"
// @Router /blogs/{post}/comments [get]
func (h commentHandler) listComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.findPost(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		params := parseOffsetParams(r)
		comments, count, err := h.commentRepo.ListTopLevel(r.Context(), post.ID, params.offset, params.limit)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "comments", err))
			return
		}

		results := make([]CommentResponse, 0, len(comments))
		for i := range comments {
			results = append(results, newCommentResponse(&comments[i], h.images))
		}
		h.responder.WriteJSON(w, newOffsetResponse(r, params, count, results))
	}
}

// createComment adds a top level comment to a post
// @Summary Create comment
// @Description The post comes from the path and the author from the token; both are ignored in the body.
// @Tags Comments
// @Accept json
// @Produce json
// @Param post path int true "Post ID"
// @Param comment body models.CommentRequest true "Comment content"
// @Success 201 {object} CommentResponse "Created comment"
// @Failure 400 {object} ErrorResponse "Validation Error"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Failure 404 {object} ErrorResponse "Not Found - post not found"
// @Router /blogs/{post}/comments [post]
func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		post, err := h.findPost(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		content, err := h.readContent(w, r, false)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment := models.Comment{
			PostID:   &post.ID,
			AuthorID: caller.ID,
			Content:  *content,
		}
		if err := h.commentRepo.Add(r.Context(), &comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "comment", err))
			return
		}
		comment.Author = *caller

		h.responder.WriteSuccess(w, http.StatusCreated, "Comment created successfully", "comment", newCommentResponse(&comment, h.images))
	}
}

// createReply answers a top level comment. Replies cannot be replied to.
// @Summary Create reply
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentID path int true "Comment ID"
// @Param reply body models.CommentRequest true "Reply content"
// @Success 201 {object} ReplyResponse "Created reply"
// @Failure 400 {object} ErrorResponse "Validation Error - Cannot reply to a reply"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Failure 404 {object} ErrorResponse "Not Found - comment not found"
// @Router /blogs/comments/{commentID}/reply [post]
func (h commentHandler) createReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		parent, err := h.findComment(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if parent.IsReply() {
			h.responder.WriteError(w, errs.NewValidationError("parent", "Cannot reply to a reply"))
			return
		}

		content, err := h.readContent(w, r, false)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		reply := models.Comment{
			ParentID: &parent.ID,
			AuthorID: caller.ID,
			Content:  *content,
		}
		if err := h.commentRepo.Add(r.Context(), &reply); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "reply", err))
			return
		}
		reply.Author = *caller

		h.responder.WriteSuccess(w, http.StatusCreated, "Reply created successfully", "reply", newReplyResponse(&reply, h.images))
	}
}

// updateComment edits a comment or reply. Only its author may do this.
// @Summary Update comment or reply
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentID path int true "Comment or reply ID"
// @Param comment body models.CommentRequest true "New content"
// @Success 200 {object} CommentResponse "Updated comment"
// @Failure 400 {object} ErrorResponse "Validation Error"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Failure 403 {object} ErrorResponse "Permission Denied - not the author"
// @Failure 404 {object} ErrorResponse "Not Found - comment not found"
// @Router /blogs/comments/{commentID} [put]
// @Router /blogs/comments/reply/{commentID} [put]
func (h commentHandler) updateComment(kind commentKind, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		comment, err := h.findComment(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !permissions.CanModifyComment(caller, comment, permissions.Update) {
			h.responder.WriteError(w, forbidden())
			return
		}

		content, err := h.readContent(w, r, partial)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if content != nil {
			comment.Content = *content
		}

		if err := h.commentRepo.Update(r.Context(), comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "comment", err))
			return
		}

		message := kind.noun + " updated successfully"
		if kind == replyComment {
			h.responder.WriteSuccess(w, http.StatusOK, message, kind.dataName, newReplyResponse(comment, h.images))
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, message, kind.dataName, newCommentResponse(comment, h.images))
	}
}

// deleteComment removes a comment or reply, and the replies of a comment
// @Summary Delete comment or reply
// @Tags Comments
// @Produce json
// @Param commentID path int true "Comment or reply ID"
// @Success 200 {object} map[string]any "Deleted"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Failure 403 {object} ErrorResponse "Permission Denied - not the author"
// @Failure 404 {object} ErrorResponse "Not Found - comment not found"
// @Router /blogs/comments/{commentID} [delete]
// @Router /blogs/comments/reply/{commentID} [delete]
func (h commentHandler) deleteComment(kind commentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		comment, err := h.findComment(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !permissions.CanModifyComment(caller, comment, permissions.Delete) {
			h.responder.WriteError(w, forbidden())
			return
		}

		if err := h.commentRepo.Delete(r.Context(), comment.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "comment", err))
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, kind.deleted, "", nil)
	}
}

func (h commentHandler) findPost(r *http.Request) (*models.BlogPost, error) {
	postID, err := pathID(r, "post", "post")
	if err != nil {
		return nil, err
	}
	post, err := h.blogPostRepo.FindByID(r.Context(), postID)
	if err != nil {
		return nil, wrapDatabaseError("find", "post", err)
	}
	return post, nil
}

func (h commentHandler) findComment(r *http.Request) (*models.Comment, error) {
	commentID, err := pathID(r, "commentID", "comment")
	if err != nil {
		return nil, err
	}
	comment, err := h.commentRepo.FindByID(r.Context(), commentID)
	if err != nil {
		return nil, wrapDatabaseError("find", "comment", err)
	}
	return comment, nil
}

// readContent decodes and validates a comment body. The returned content is
// sanitized and nil only for a partial update that left it out.
func (h commentHandler) readContent(w http.ResponseWriter, r *http.Request, partial bool) (*string, error) {
	var req models.CommentRequest
	if err := h.decoder.decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if req.Content != nil {
		content := services.SanitizeContent(*req.Content)
		req.Content = &content
	}
	if err := validation.ValidateComment(req, partial).Err(); err != nil {
		return nil, err
	}
	return req.Content, nil
}
