package api

import (
	"context"
	"net/http"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/permissions"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rpupo63/blog-backend/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type userHandler struct {
	responder Responder
	logger    zerolog.Logger
	decoder   requestDecoder
	userRepo  database.UserRepository
	images    services.ImageStore
}

func newUserHandler(userRepo database.UserRepository, images services.ImageStore, decoder requestDecoder) userHandler {
	logger := log.With().Str("handlerName", "userHandler").Logger()

	return userHandler{
		responder: NewResponder(logger),
		logger:    logger,
		decoder:   decoder,
		userRepo:  userRepo,
		images:    images,
	}
}

// getProfile returns a public profile
// @Summary Get profile
// @Tags Users
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} ProfileResponse "Profile"
// @Failure 404 {object} ErrorResponse "Not Found - user not found"
// @Router /user/profile/{userID} [get]
func (h userHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathID(r, "userID", "user")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.userRepo.FindByID(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Profile retrieved successfully", "user", newProfileResponse(user, h.images))
	}
}

// updateProfile changes names, bio and photo of the caller's own profile.
// PUT requires both names, PATCH takes any subset.
// @Summary Update profile
// @Tags Users
// @Accept json,mpfd
// @Produce json
// @Param userID path int true "User ID"
// @Param profile body models.ProfileUpdateRequest true "Profile fields"
// @Success 200 {object} ProfileResponse "Updated profile"
// @Failure 400 {object} ErrorResponse "Validation Error"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Failure 403 {object} ErrorResponse "Permission Denied - not the profile owner"
// @Failure 404 {object} ErrorResponse "Not Found - user not found"
// @Router /user/profile/{userID} [put]
func (h userHandler) updateProfile(partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		userID, err := pathID(r, "userID", "user")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		target, err := h.userRepo.FindByID(r.Context(), userID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if !permissions.IsOwnerOrReadOnly(caller, target, permissions.ActionFromMethod(r.Method)) {
			h.responder.WriteError(w, forbidden())
			return
		}

		var req models.ProfileUpdateRequest
		var photo *services.Upload
		if isMultipart(r) {
			if err := h.decoder.parseMultipart(w, r); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			req.FirstName = formValue(r, "first_name")
			req.LastName = formValue(r, "last_name")
			req.Bio = formValue(r, "bio")
			if photo, err = h.decoder.formImage(r, "profile_photo"); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		} else if err := h.decoder.decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := validation.ValidateProfileUpdate(req, partial).Err(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.FirstName != nil {
			target.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			target.LastName = *req.LastName
		}
		if req.Bio != nil {
			target.Bio = *req.Bio
		}

		oldPhoto := target.ProfilePhoto
		if photo != nil {
			key, err := h.images.Save(r.Context(), services.ProfilePhotoFolder, *photo)
			if err != nil {
				h.responder.WriteError(w, storeError("upload", err))
				return
			}
			target.ProfilePhoto = key
		}

		if err := h.userRepo.Update(r.Context(), target); err != nil {
			if photo != nil {
				h.discardImage(r.Context(), target.ProfilePhoto)
			}
			h.responder.WriteError(w, wrapDatabaseError("update", "user", err))
			return
		}
		if photo != nil && oldPhoto != "" {
			h.discardImage(r.Context(), oldPhoto)
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Profile updated successfully", "user", newProfileResponse(target, h.images))
	}
}

// deleteAccount removes the caller together with everything they own
// @Summary Delete account
// @Description Deletes the caller's posts, comments and replies, then their stored images
// @Tags Users
// @Produce json
// @Success 200 {object} map[string]any "User deleted"
// @Failure 401 {object} ErrorResponse "Authentication Failed"
// @Router /user/delete-account [delete]
func (h userHandler) deleteAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller := ctxGetUser(r.Context())

		target, err := h.userRepo.FindByID(r.Context(), caller.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "user", err))
			return
		}
		if !permissions.IsOwner(caller, target) {
			h.responder.WriteError(w, forbidden())
			return
		}

		keys, err := h.userRepo.OwnedImageKeys(r.Context(), target.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("list images of", "user", err))
			return
		}
		if err := h.userRepo.Delete(r.Context(), target.ID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "user", err))
			return
		}

		if err := services.DeleteImages(r.Context(), h.images, keys); err != nil {
			h.logger.Error().Err(err).Uint("userID", target.ID).Msg("failed to delete images of deleted user")
		}

		h.logger.Info().Uint("userID", target.ID).Msg("user deleted")
		h.responder.WriteSuccess(w, http.StatusOK, "User deleted successfully", "", nil)
	}
}

func (h userHandler) discardImage(ctx context.Context, key string) {
	if err := h.images.Delete(ctx, key); err != nil {
		h.logger.Warn().Err(err).Str("key", key).Msg("failed to delete image")
	}
}
