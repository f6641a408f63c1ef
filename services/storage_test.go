package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rpupo63/blog-backend/errs"
)

type fakeObjectAPI struct {
	puts    []*s3.PutObjectInput
	deletes []string
	body    string
}

func (f *fakeObjectAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, _ := io.ReadAll(params.Body)
	f.body = string(data)
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3ImageStore(t *testing.T) {
	ctx := context.Background()
	api := &fakeObjectAPI{}
	store := NewS3ImageStore(api, "blog-media", "/media/", "https://cdn.example.com/")

	key, err := store.Save(ctx, ThumbnailFolder, Upload{
		Filename:    "Cover.PNG",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("\x89PNG"),
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(key, "media/thumbnails/") || !strings.HasSuffix(key, ".png") {
		t.Errorf("unexpected key %q", key)
	}
	if len(api.puts) != 1 || *api.puts[0].Bucket != "blog-media" || *api.puts[0].ContentType != "image/png" {
		t.Errorf("unexpected put input: %+v", api.puts)
	}
	if api.body != "\x89PNG" {
		t.Errorf("expected body to be uploaded, got %q", api.body)
	}

	if got := store.URL(key); got != "https://cdn.example.com/"+key {
		t.Errorf("unexpected URL %q", got)
	}
	if store.URL("") != "" {
		t.Error("empty key should have no URL")
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, ""); err != nil {
		t.Fatalf("Delete empty: %v", err)
	}
	if len(api.deletes) != 1 || api.deletes[0] != key {
		t.Errorf("unexpected deletes: %v", api.deletes)
	}
}

func TestDisabledImageStoreRejectsUploads(t *testing.T) {
	_, err := DisabledImageStore{}.Save(context.Background(), ThumbnailFolder, Upload{Body: strings.NewReader("x")})
	if !errs.IsStorageUnavailableError(err) {
		t.Fatalf("expected storage unavailable error, got %v", err)
	}
}
