package api

import (
	"net/http"
	"strings"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type tagHandler struct {
	responder Responder
	logger    zerolog.Logger
	decoder   requestDecoder
	tagRepo   database.TagRepository
}

func newTagHandler(tagRepo database.TagRepository, decoder requestDecoder) tagHandler {
	logger := log.With().Str("handlerName", "tagHandler").Logger()

	return tagHandler{
		responder: NewResponder(logger),
		logger:    logger,
		decoder:   decoder,
		tagRepo:   tagRepo,
	}
}

// listTags returns every tag
// @Summary List tags
// @Tags Tags
// @Produce json
// @Success 200 {array} TagResponse "Tags"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Router /blogs/tags [get]
func (h tagHandler) listTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tagRepo.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list", "tags", err))
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Tags retrieved successfully", "tags", newTagResponses(tags))
	}
}

// createTag adds a tag. The name is capitalized and the slug derived from it.
// @Summary Create tag
// @Tags Tags
// @Accept json
// @Produce json
// @Param tag body models.TagRequest true "Tag name"
// @Success 201 {object} TagResponse "Created tag"
// @Failure 400 {object} ErrorResponse "Validation Error"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Router /blogs/tags [post]
func (h tagHandler) createTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.TagRequest
		if err := h.decoder.decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validation.ValidateTag(req).Err(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		tag := models.Tag{Name: strings.TrimSpace(req.Name)}
		tag.Normalize()
		if tag.Slug == "" {
			h.responder.WriteError(w, errs.NewValidationError("name", "Enter a name containing letters or numbers."))
			return
		}

		if _, err := h.tagRepo.FindBySlug(r.Context(), tag.Slug); err == nil {
			h.responder.WriteError(w, errs.NewAlreadyExists("tag", "slug"))
			return
		} else if err = wrapDatabaseError("find", "tag", err); !errs.IsNotFound(err) {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.tagRepo.Add(r.Context(), &tag); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "tag", err))
			return
		}
		h.responder.WriteSuccess(w, http.StatusCreated, "Tag created successfully", "tag", TagResponse{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}
}
