package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestCreatePostSlugs(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")

	first := env.createPost(t, token, "Hello World", "First body")
	second := env.createPost(t, token, "Hello World", "Second body")
	reserved := env.createPost(t, token, "Tags", "Shadowing a route")
	symbols := env.createPost(t, token, "!!!", "No letters in the title")

	if first.Slug != "hello-world" {
		t.Errorf("expected hello-world, got %q", first.Slug)
	}
	if second.Slug != "hello-world-2" {
		t.Errorf("expected hello-world-2, got %q", second.Slug)
	}
	if reserved.Slug != "tags-2" {
		t.Errorf("expected tags-2, got %q", reserved.Slug)
	}
	if symbols.Slug != "post" {
		t.Errorf("expected post, got %q", symbols.Slug)
	}
	if first.Author == nil || first.Author.Username != "author_one" {
		t.Errorf("expected author in response, got %+v", first.Author)
	}
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")

	rec := env.do(t, http.MethodPost, "/api/v1/blogs", token, map[string]any{"title": "Only a title"})
	requireStatus(t, rec, http.StatusBadRequest)
	if got := decodeError(t, rec); got.Field != "content" {
		t.Errorf("expected error on content, got %+v", got)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/blogs", token, map[string]any{"title": "T", "content": "C", "tags": []uint{42}})
	requireStatus(t, rec, http.StatusBadRequest)
	if got := decodeError(t, rec); got.Field != "tags" || got.Message != `Invalid pk "42" - object does not exist.` {
		t.Errorf("unexpected error %+v", got)
	}

	requireStatus(t, env.do(t, http.MethodPost, "/api/v1/blogs", "", map[string]any{"title": "T", "content": "C"}), http.StatusUnauthorized)
	if env.store.PostCount() != 0 {
		t.Errorf("expected no posts, got %d", env.store.PostCount())
	}
}

func TestCreatePostSanitizesContent(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")

	post := env.createPost(t, token, "Scripted", `<p>hello</p><script>alert(1)</script>`)
	if strings.Contains(post.Content, "<script") {
		t.Errorf("script survived sanitizing: %q", post.Content)
	}
	if !strings.Contains(post.Content, "<p>hello</p>") {
		t.Errorf("expected safe markup to be kept, got %q", post.Content)
	}
}

func TestGetPost(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")
	env.createPost(t, token, "Hello World", "Body")

	rec := env.do(t, http.MethodGet, "/api/v1/blogs/hello-world", "", nil)
	requireStatus(t, rec, http.StatusOK)
	resp := decode[struct {
		Message string       `json:"message"`
		Post    PostResponse `json:"post"`
	}](t, rec)
	if resp.Message != "Post retrieved successfully" || resp.Post.Title != "Hello World" {
		t.Errorf("unexpected response %+v", resp)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/blogs/missing", "", nil)
	requireStatus(t, rec, http.StatusNotFound)
	if got := decodeError(t, rec); got.Type != "Not Found" {
		t.Errorf("unexpected error type %q", got.Type)
	}
}

func TestUpdatePostSlug(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")
	env.createPost(t, token, "Hello World", "Body")

	rec := env.do(t, http.MethodPatch, "/api/v1/blogs/hello-world", token, map[string]any{"content": "New body"})
	requireStatus(t, rec, http.StatusOK)
	post := decode[struct {
		Post PostResponse `json:"post"`
	}](t, rec).Post
	if post.Slug != "hello-world" || post.Content != "New body" {
		t.Errorf("content update should keep the slug, got %+v", post)
	}

	rec = env.do(t, http.MethodPatch, "/api/v1/blogs/hello-world", token, map[string]any{"title": "Goodbye World"})
	requireStatus(t, rec, http.StatusOK)
	post = decode[struct {
		Post PostResponse `json:"post"`
	}](t, rec).Post
	if post.Slug != "goodbye-world" {
		t.Errorf("title update should derive a new slug, got %q", post.Slug)
	}

	requireStatus(t, env.do(t, http.MethodGet, "/api/v1/blogs/hello-world", "", nil), http.StatusNotFound)
	requireStatus(t, env.do(t, http.MethodGet, "/api/v1/blogs/goodbye-world", "", nil), http.StatusOK)

	// PUT needs the whole post
	rec = env.do(t, http.MethodPut, "/api/v1/blogs/goodbye-world", token, map[string]any{"title": "Only title"})
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestPostPermissions(t *testing.T) {
	env := newTestEnv(t, nil)
	_, author := env.createUser(t, "author_one")
	_, stranger := env.createUser(t, "stranger")
	env.createPost(t, author, "Hello World", "Body")

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"stranger patch", http.MethodPatch, "/api/v1/blogs/hello-world", stranger, http.StatusForbidden},
		{"stranger put", http.MethodPut, "/api/v1/blogs/hello-world", stranger, http.StatusForbidden},
		{"stranger delete", http.MethodDelete, "/api/v1/blogs/hello-world", stranger, http.StatusForbidden},
		{"anonymous patch", http.MethodPatch, "/api/v1/blogs/hello-world", "", http.StatusUnauthorized},
		{"anonymous delete", http.MethodDelete, "/api/v1/blogs/hello-world", "", http.StatusUnauthorized},
		{"unknown slug", http.MethodPatch, "/api/v1/blogs/nope", stranger, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.target, tt.token, map[string]any{"title": "Hijacked", "content": "Hijacked"})
			requireStatus(t, rec, tt.want)
		})
	}

	rec := env.do(t, http.MethodGet, "/api/v1/blogs/hello-world", "", nil)
	requireStatus(t, rec, http.StatusOK)
	post := decode[struct {
		Post PostResponse `json:"post"`
	}](t, rec).Post
	if post.Title != "Hello World" || post.Content != "Body" {
		t.Errorf("post changed by a non-author: %+v", post)
	}

	requireStatus(t, env.do(t, http.MethodDelete, "/api/v1/blogs/hello-world", author, nil), http.StatusOK)
	if env.store.PostCount() != 0 {
		t.Errorf("expected the post to be deleted, got %d posts", env.store.PostCount())
	}
}

func TestPostThumbnailUpload(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")

	rec := env.doMultipart(t, http.MethodPost, "/api/v1/blogs", token, multipartForm{
		fields:   map[string]string{"title": "With picture", "content": "Body"},
		file:     "thumbnail",
		filename: "cover",
		data:     pngHeader,
	})
	requireStatus(t, rec, http.StatusCreated)
	post := decode[struct {
		Post PostResponse `json:"post"`
	}](t, rec).Post
	if post.Thumbnail == nil || !strings.HasPrefix(*post.Thumbnail, "https://cdn.example.test/media/thumbnails/") {
		t.Fatalf("unexpected thumbnail %v", post.Thumbnail)
	}
	if !strings.HasSuffix(*post.Thumbnail, ".png") {
		t.Errorf("expected an extension from the sniffed type, got %q", *post.Thumbnail)
	}
	oldKey := strings.TrimPrefix(*post.Thumbnail, "https://cdn.example.test/")

	// replacing the thumbnail drops the old object
	rec = env.doMultipart(t, http.MethodPatch, "/api/v1/blogs/with-picture", token, multipartForm{
		file:     "thumbnail",
		filename: "cover.png",
		data:     pngHeader,
	})
	requireStatus(t, rec, http.StatusOK)
	if env.images.Has(oldKey) {
		t.Errorf("expected %s to be deleted", oldKey)
	}
	if len(env.images.Objects) != 1 {
		t.Errorf("expected one stored image, got %d", len(env.images.Objects))
	}

	rec = env.doMultipart(t, http.MethodPost, "/api/v1/blogs", token, multipartForm{
		fields:   map[string]string{"title": "Not a picture", "content": "Body"},
		file:     "thumbnail",
		filename: "notes.png",
		data:     []byte("just some text"),
	})
	requireStatus(t, rec, http.StatusBadRequest)
	if got := decodeError(t, rec); got.Field != "thumbnail" {
		t.Errorf("expected error on thumbnail, got %+v", got)
	}
}

func TestTags(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")

	requireStatus(t, env.do(t, http.MethodPost, "/api/v1/blogs/tags", "", map[string]string{"name": "golang"}), http.StatusUnauthorized)

	rec := env.do(t, http.MethodPost, "/api/v1/blogs/tags", token, map[string]string{"name": "web development"})
	requireStatus(t, rec, http.StatusCreated)
	tag := decode[struct {
		Tag TagResponse `json:"tag"`
	}](t, rec).Tag
	if tag.Name != "Web development" || tag.Slug != "web-development" {
		t.Errorf("unexpected tag %+v", tag)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/blogs/tags", token, map[string]string{"name": "Web Development"})
	requireStatus(t, rec, http.StatusBadRequest)
	requireStatus(t, env.do(t, http.MethodPost, "/api/v1/blogs/tags", token, map[string]string{"name": "!!!"}), http.StatusBadRequest)

	rec = env.do(t, http.MethodGet, "/api/v1/blogs/tags", token, nil)
	requireStatus(t, rec, http.StatusOK)
	tags := decode[struct {
		Tags []TagResponse `json:"tags"`
	}](t, rec).Tags
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %+v", tags)
	}

	rec = env.do(t, http.MethodPost, "/api/v1/blogs", token, map[string]any{"title": "Tagged", "content": "Body", "tags": []uint{tag.ID}})
	requireStatus(t, rec, http.StatusCreated)
	env.createPost(t, token, "Untagged", "Body")

	rec = env.do(t, http.MethodGet, "/api/v1/blogs/tag/web-development", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[PageResponse[PostResponse]](t, rec)
	if page.Count != 1 || page.Results[0].Slug != "tagged" || len(page.Results[0].Tags) != 1 {
		t.Errorf("unexpected tag listing %+v", page)
	}

	requireStatus(t, env.do(t, http.MethodGet, "/api/v1/blogs/tag/unknown", "", nil), http.StatusNotFound)

	// clearing tags with an empty list
	rec = env.do(t, http.MethodPatch, "/api/v1/blogs/tagged", token, map[string]any{"tags": []uint{}})
	requireStatus(t, rec, http.StatusOK)
	post := decode[struct {
		Post PostResponse `json:"post"`
	}](t, rec).Post
	if len(post.Tags) != 0 {
		t.Errorf("expected tags to be cleared, got %+v", post.Tags)
	}
}

func TestListPostsPagination(t *testing.T) {
	env := newTestEnv(t, nil)
	_, token := env.createUser(t, "author_one")
	for i := 1; i <= 6; i++ {
		env.createPost(t, token, fmt.Sprintf("Post %d", i), "Body")
	}

	rec := env.do(t, http.MethodGet, "/api/v1/blogs", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[PageResponse[PostResponse]](t, rec)
	if page.Count != 6 || page.TotalPages != 2 || page.CurrentPage != 1 || len(page.Results) != 5 {
		t.Fatalf("unexpected first page %+v", page)
	}
	if page.Results[0].Slug != "post-6" {
		t.Errorf("expected newest first, got %q", page.Results[0].Slug)
	}
	if page.Previous != nil {
		t.Errorf("expected no previous link, got %q", *page.Previous)
	}
	if page.Next == nil || *page.Next != "http://example.com/api/v1/blogs?page=2" {
		t.Errorf("unexpected next link %v", page.Next)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/blogs?page=2", "", nil)
	requireStatus(t, rec, http.StatusOK)
	page = decode[PageResponse[PostResponse]](t, rec)
	if len(page.Results) != 1 || page.Next != nil {
		t.Errorf("unexpected last page %+v", page)
	}
	if page.Previous == nil || *page.Previous != "http://example.com/api/v1/blogs" {
		t.Errorf("unexpected previous link %v", page.Previous)
	}

	for _, query := range []string{"page=3", "page=0", "page=abc", "page=9223372036854775807"} {
		rec = env.do(t, http.MethodGet, "/api/v1/blogs?"+query, "", nil)
		requireStatus(t, rec, http.StatusNotFound)
		if got := decodeError(t, rec); got.Message != "Invalid page." {
			t.Errorf("%s: unexpected error %+v", query, got)
		}
	}

	rec = env.do(t, http.MethodGet, "/api/v1/blogs?page_size=100", "", nil)
	requireStatus(t, rec, http.StatusOK)
	if page = decode[PageResponse[PostResponse]](t, rec); len(page.Results) != 6 || page.TotalPages != 1 {
		t.Errorf("expected every post on one page, got %+v", page)
	}
}

func TestListPostsByUser(t *testing.T) {
	env := newTestEnv(t, nil)
	author, token := env.createUser(t, "author_one")
	_, otherToken := env.createUser(t, "author_two")
	env.createPost(t, token, "Mine", "Body")
	env.createPost(t, otherToken, "Theirs", "Body")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/blogs/user/%d", author.ID), "", nil)
	requireStatus(t, rec, http.StatusOK)
	page := decode[PageResponse[PostResponse]](t, rec)
	if page.Count != 1 || page.Results[0].Slug != "mine" {
		t.Fatalf("unexpected listing %+v", page)
	}
	if page.Results[0].Author != nil {
		t.Errorf("author should be omitted in a per-user listing")
	}

	rec = env.do(t, http.MethodGet, "/api/v1/blogs/user/999", "", nil)
	requireStatus(t, rec, http.StatusOK)
	if page = decode[PageResponse[PostResponse]](t, rec); page.Count != 0 || len(page.Results) != 0 {
		t.Errorf("expected an empty page, got %+v", page)
	}
}
