package mocks

import (
	"context"
	"fmt"
	"io"
	"path"
	"sync"

	"github.com/rpupo63/blog-backend/services"
)

// ImageStore keeps uploads in memory.
type ImageStore struct {
	mu      sync.Mutex
	n       int
	Objects map[string][]byte
	Deleted []string
	SaveErr error
}

func NewImageStore() *ImageStore {
	return &ImageStore{Objects: map[string][]byte{}}
}

func (s *ImageStore) Save(ctx context.Context, folder string, upload services.Upload) (string, error) {
	if s.SaveErr != nil {
		return "", s.SaveErr
	}
	body, err := io.ReadAll(upload.Body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	key := path.Join("media", folder, fmt.Sprintf("%d%s", s.n, path.Ext(upload.Filename)))
	s.Objects[key] = body
	return key, nil
}

func (s *ImageStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Objects, key)
	s.Deleted = append(s.Deleted, key)
	return nil
}

func (s *ImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.example.test/" + key
}

func (s *ImageStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Objects[key]
	return ok
}
