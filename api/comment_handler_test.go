package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func (e *testEnv) comment(t *testing.T, token string, postID uint, content string) CommentResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", postID), token, map[string]string{"content": content})
	requireStatus(t, rec, http.StatusCreated)
	return decode[struct {
		Comment CommentResponse `json:"comment"`
	}](t, rec).Comment
}

func (e *testEnv) reply(t *testing.T, token string, commentID uint, content string) ReplyResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, fmt.Sprintf("/api/v1/blogs/comments/%d/reply", commentID), token, map[string]string{"content": content})
	requireStatus(t, rec, http.StatusCreated)
	return decode[struct {
		Reply ReplyResponse `json:"reply"`
	}](t, rec).Reply
}

func TestCommentsAndReplies(t *testing.T) {
	env := newTestEnv(t, nil)
	_, author := env.createUser(t, "author_one")
	_, reader := env.createUser(t, "reader_one")
	post := env.createPost(t, author, "Hello World", "Body")

	comment := env.comment(t, reader, post.ID, "Nice post")
	if comment.Post == nil || *comment.Post != post.ID || comment.Parent != nil {
		t.Errorf("unexpected comment %+v", comment)
	}
	if comment.Author.Username != "reader_one" {
		t.Errorf("expected the caller as author, got %+v", comment.Author)
	}

	reply := env.reply(t, author, comment.ID, "Thanks")
	if reply.Parent == nil || *reply.Parent != comment.ID {
		t.Errorf("unexpected reply %+v", reply)
	}

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/blogs/comments/%d/reply", reply.ID), reader, map[string]string{"content": "Nested"})
	requireStatus(t, rec, http.StatusBadRequest)
	if got := decodeError(t, rec); got.Field != "parent" || got.Message != "Cannot reply to a reply" {
		t.Errorf("unexpected error %+v", got)
	}

	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/blogs/%d/comments", post.ID), "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[OffsetResponse[CommentResponse]](t, rec)
	if page.Count != 1 || len(page.Results) != 1 {
		t.Fatalf("expected only the top level comment, got %+v", page)
	}
	if len(page.Results[0].Replies) != 1 || page.Results[0].Replies[0].ID != reply.ID {
		t.Errorf("expected the reply nested under its comment, got %+v", page.Results[0].Replies)
	}
}

func TestCommentValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")
	post := env.createPost(t, token, "Hello World", "Body")

	requireStatus(t, env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", post.ID), token, map[string]string{}), http.StatusBadRequest)
	requireStatus(t, env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/blogs/%d/comments", post.ID), "", map[string]string{"content": "hi"}), http.StatusUnauthorized)
	requireStatus(t, env.do(t, http.MethodPost, "/api/v1/blogs/999/comments", token, map[string]string{"content": "hi"}), http.StatusNotFound)
	requireStatus(t, env.do(t, http.MethodGet, "/api/v1/blogs/999/comments", "", nil), http.StatusNotFound)
	requireStatus(t, env.do(t, http.MethodPost, "/api/v1/blogs/comments/999/reply", token, map[string]string{"content": "hi"}), http.StatusNotFound)

	if env.store.CommentCount() != 0 {
		t.Errorf("expected no comments, got %d", env.store.CommentCount())
	}
}

func TestCommentPermissions(t *testing.T) {
	env := newTestEnv(t, nil)
	_, author := env.createUser(t, "author_one")
	_, stranger := env.createUser(t, "stranger")
	post := env.createPost(t, author, "Hello World", "Body")
	comment := env.comment(t, author, post.ID, "Original")
	reply := env.reply(t, author, comment.ID, "Original reply")

	commentURL := fmt.Sprintf("/api/v1/blogs/comments/%d", comment.ID)
	replyURL := fmt.Sprintf("/api/v1/blogs/comments/reply/%d", reply.ID)

	requireStatus(t, env.do(t, http.MethodPatch, commentURL, stranger, map[string]string{"content": "Hijacked"}), http.StatusForbidden)
	requireStatus(t, env.do(t, http.MethodDelete, commentURL, stranger, nil), http.StatusForbidden)
	requireStatus(t, env.do(t, http.MethodPut, replyURL, stranger, map[string]string{"content": "Hijacked"}), http.StatusForbidden)
	requireStatus(t, env.do(t, http.MethodPatch, commentURL, "", map[string]string{"content": "Hijacked"}), http.StatusUnauthorized)
	requireStatus(t, env.do(t, http.MethodPatch, "/api/v1/blogs/comments/999", stranger, map[string]string{"content": "x"}), http.StatusNotFound)

	rec := env.do(t, http.MethodPatch, commentURL, author, map[string]string{"content": "Edited"})
	requireStatus(t, rec, http.StatusOK)
	resp := decode[struct {
		Message string          `json:"message"`
		Comment CommentResponse `json:"comment"`
	}](t, rec)
	if resp.Message != "Comment updated successfully" || resp.Comment.Content != "Edited" {
		t.Errorf("unexpected response %+v", resp)
	}

	rec = env.do(t, http.MethodPut, replyURL, author, map[string]string{"content": "Edited reply"})
	requireStatus(t, rec, http.StatusOK)
	replyResp := decode[struct {
		Message string        `json:"message"`
		Reply   ReplyResponse `json:"reply"`
	}](t, rec)
	if replyResp.Message != "Reply updated successfully" || replyResp.Reply.Content != "Edited reply" {
		t.Errorf("unexpected response %+v", replyResp)
	}

	rec = env.do(t, http.MethodDelete, replyURL, author, nil)
	requireStatus(t, rec, http.StatusOK)
	if got := decode[map[string]any](t, rec); got["message"] != "Reply deleted successfully." {
		t.Errorf("unexpected message %v", got["message"])
	}

	env.reply(t, author, comment.ID, "Another reply")
	requireStatus(t, env.do(t, http.MethodDelete, commentURL, author, nil), http.StatusOK)
	if env.store.CommentCount() != 0 {
		t.Errorf("expected the comment and its replies to be deleted, got %d", env.store.CommentCount())
	}
}

func TestCommentPagination(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")
	post := env.createPost(t, token, "Hello World", "Body")
	for i := 1; i <= 3; i++ {
		env.comment(t, token, post.ID, fmt.Sprintf("Comment %d", i))
	}

	base := fmt.Sprintf("/api/v1/blogs/%d/comments", post.ID)
	rec := env.do(t, http.MethodGet, base+"?limit=2", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[OffsetResponse[CommentResponse]](t, rec)
	if page.Count != 3 || len(page.Results) != 2 || page.Results[0].Content != "Comment 1" {
		t.Fatalf("unexpected first page %+v", page)
	}
	wantNext := fmt.Sprintf("http://example.com%s?limit=2&offset=2", base)
	if page.Next == nil || *page.Next != wantNext {
		t.Errorf("expected next %q, got %v", wantNext, page.Next)
	}
	if page.Previous != nil {
		t.Errorf("expected no previous link, got %q", *page.Previous)
	}

	rec = env.do(t, http.MethodGet, base+"?limit=2&offset=2", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page = decode[OffsetResponse[CommentResponse]](t, rec)
	if len(page.Results) != 1 || page.Next != nil {
		t.Errorf("unexpected last page %+v", page)
	}
	wantPrevious := fmt.Sprintf("http://example.com%s?limit=2", base)
	if page.Previous == nil || *page.Previous != wantPrevious {
		t.Errorf("expected previous %q, got %v", wantPrevious, page.Previous)
	}
}

func TestCommentPaginationHugeOffset(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")
	post := env.createPost(t, token, "Hello World", "Body")
	env.comment(t, token, post.ID, "Comment 1")

	base := fmt.Sprintf("/api/v1/blogs/%d/comments", post.ID)
	rec := env.do(t, http.MethodGet, base+"?offset=9223372036854775807", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[OffsetResponse[CommentResponse]](t, rec)
	if len(page.Results) != 0 || page.Next != nil {
		t.Errorf("expected an empty last page, got %+v", page)
	}
	if page.Offset < 0 {
		t.Errorf("offset overflowed to %d", page.Offset)
	}
	if page.Previous == nil || strings.Contains(*page.Previous, "offset=-") {
		t.Errorf("unexpected previous link %v", page.Previous)
	}
}
