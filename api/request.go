package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
)

const defaultMaxUploadBytes = 5 << 20

// multipart overhead allowed on top of the image itself
const formSlackBytes = 1 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var jsonMediaTypes = []string{"application/json"}

const invalidImageMessage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

// requestDecoder reads JSON or multipart bodies with a size cap.
type requestDecoder struct {
	maxUploadBytes int64
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// requireMediaType rejects a body sent with a Content-Type outside allowed.
// A request without Content-Type is read as JSON.
func requireMediaType(r *http.Request, allowed []string) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil && slices.Contains(allowed, mediaType) {
		return nil
	}
	return errs.NewUnsupportedMediaTypeError(contentType, allowed)
}

// decodeJSON fills dst from the body. An empty body leaves dst untouched.
func (d requestDecoder) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := requireMediaType(r, jsonMediaTypes); err != nil {
		return err
	}
	r.Body = http.MaxBytesReader(w, r.Body, d.maxUploadBytes+formSlackBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.As(err, &maxErr):
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

func (d requestDecoder) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, d.maxUploadBytes+formSlackBytes)
	if err := r.ParseMultipartForm(d.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return errs.NewMalformedPayloadError("multipart", err)
	}
	return nil
}

// formValue returns nil when key was not sent at all.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formUints reads a list of ids sent either as repeated fields or as one
// comma separated field.
func formUints(r *http.Request, key string) (*[]uint, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok {
		return nil, nil
	}
	ids := []uint{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 64)
			if err != nil {
				return nil, errs.NewValidationError(key, "Incorrect type. Expected pk value, received str.")
			}
			ids = append(ids, uint(id))
		}
	}
	return &ids, nil
}

// formImage reads an uploaded image. It returns nil when field is absent.
func (d requestDecoder) formImage(r *http.Request, field string) (*services.Upload, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}
	defer file.Close()

	if header.Size > d.maxUploadBytes {
		return nil, errs.NewMaxBodySizeExceededError(d.maxUploadBytes)
	}
	data, err := io.ReadAll(io.LimitReader(file, d.maxUploadBytes+1))
	if err != nil {
		return nil, errs.NewMalformedPayloadError("multipart", err)
	}
	if int64(len(data)) > d.maxUploadBytes {
		return nil, errs.NewMaxBodySizeExceededError(d.maxUploadBytes)
	}
	if len(data) == 0 {
		return nil, errs.NewValidationError(field, "The submitted file is empty.")
	}

	contentType := http.DetectContentType(data)
	if !isAllowedImage(contentType) {
		return nil, errs.NewValidationError(field, invalidImageMessage)
	}

	filename := header.Filename
	if path.Ext(filename) == "" {
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			filename += exts[0]
		}
	}

	return &services.Upload{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}, nil
}

func isAllowedImage(contentType string) bool {
	for _, t := range allowedImageTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// pathID reads a numeric id from the route. Anything else cannot name a
// row, so it is reported as not found.
func pathID(r *http.Request, key, entity string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, key), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.NewNotFound(entity)
	}
	return uint(id), nil
}
