package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Upload folders below the media location.
const (
	ThumbnailFolder    = "thumbnails"
	ProfilePhotoFolder = "images/profile"
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists uploaded images. Keys are returned by Save and stored
// on the owning record; URL turns a key into something a client can fetch.
type ImageStore interface {
	Save(ctx context.Context, folder string, upload Upload) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ObjectAPI is the subset of the S3 client the store needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3ImageStore struct {
	client   ObjectAPI
	bucket   string
	location string
	baseURL  string
}

func NewS3ImageStore(client ObjectAPI, bucket, location, baseURL string) *S3ImageStore {
	return &S3ImageStore{
		client:   client,
		bucket:   bucket,
		location: strings.Trim(location, "/"),
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// NewImageStore returns an S3 backed store when S3_BUCKET is set and a store
// that rejects uploads otherwise.
func NewImageStore(ctx context.Context, c map[string]string) (ImageStore, error) {
	bucket := config.GetString(c, "S3_BUCKET", "")
	if bucket == "" {
		log.Warn().Msg("S3_BUCKET not set, image uploads are disabled")
		return DisabledImageStore{}, nil
	}

	region := config.GetString(c, "AWS_REGION", "us-east-1")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := config.GetString(c, "S3_ENDPOINT", "")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := config.GetString(c, "S3_PUBLIC_BASE_URL", "")
	if baseURL == "" {
		if endpoint != "" {
			baseURL = strings.TrimRight(endpoint, "/") + "/" + bucket
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
		}
	}

	location := config.GetString(c, "MEDIA_LOCATION", "media")
	return NewS3ImageStore(client, bucket, location, baseURL), nil
}

func (s *S3ImageStore) Save(ctx context.Context, folder string, upload Upload) (string, error) {
	key := path.Join(s.location, folder, uuid.NewString()+strings.ToLower(path.Ext(upload.Filename)))

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        upload.Body,
		ContentType: aws.String(upload.ContentType),
	}
	if upload.Size > 0 {
		input.ContentLength = aws.Int64(upload.Size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errs.NewStorageUnavailableError("upload", err)
	}
	return key, nil
}

func (s *S3ImageStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errs.NewStorageUnavailableError("delete", err)
	}
	return nil
}

func (s *S3ImageStore) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.baseURL + "/" + key
}

var ErrStorageDisabled = errors.New("image storage is not configured")

// DisabledImageStore rejects uploads. Deleting is a no-op.
type DisabledImageStore struct{}

func (DisabledImageStore) Save(ctx context.Context, folder string, upload Upload) (string, error) {
	return "", errs.NewStorageUnavailableError("upload", ErrStorageDisabled)
}

func (DisabledImageStore) Delete(ctx context.Context, key string) error {
	return nil
}

func (DisabledImageStore) URL(key string) string {
	return key
}

// DeleteImages removes keys concurrently and returns the first failure.
func DeleteImages(ctx context.Context, store ImageStore, keys []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, key := range keys {
		if key == "" {
			continue
		}
		g.Go(func() error {
			return store.Delete(ctx, key)
		})
	}
	return g.Wait()
}
