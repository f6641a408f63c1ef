package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
	"github.com/rpupo63/blog-backend/validation"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	decoder   requestDecoder
	userRepo  database.UserRepository
	tokens    *services.TokenIssuer
	blacklist services.TokenBlacklist
}

func newAuthHandler(userRepo database.UserRepository, tokens *services.TokenIssuer, blacklist services.TokenBlacklist, decoder requestDecoder) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		decoder:   decoder,
		userRepo:  userRepo,
		tokens:    tokens,
		blacklist: blacklist,
	}
}

// dummyUser gives unknown emails a hash to compare against so a login
// attempt costs the same whether or not the account exists.
var dummyUser = sync.OnceValue(func() *models.User {
	u := &models.User{}
	if err := u.HashPassword("not-a-real-password-1A!"); err != nil {
		log.Error().Err(err).Msg("failed to hash dummy password")
	}
	return u
})

// register creates a new account
// @Summary Register
// @Description Validates and stores a new user. Password fields are never returned.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body models.RegisterRequest true "Registration data"
// @Success 201 {object} UserResponse "Created user"
// @Failure 400 {object} ErrorResponse "Validation Error - first failing field"
// @Router /auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := h.decoder.decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		problems, err := validation.ValidateRegistration(r.Context(), req, h.userRepo)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("check", "user", err))
			return
		}
		if err := problems.Err(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user := models.User{
			Email:     req.Email,
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Bio:       req.Bio,
		}
		if err := services.CreateUser(r.Context(), h.userRepo, &user, req.Password); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "user", err))
			return
		}

		h.logger.Info().Uint("userID", user.ID).Msg("user registered")
		h.responder.WriteSuccess(w, http.StatusCreated, "User created successfully", "user", newUserResponse(&user))
	}
}

// login exchanges credentials for an access and refresh token
// @Summary Login
// @Description Unknown email, wrong password and inactive account all return the same 401
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Email and password"
// @Success 200 {object} TokensResponse "Token pair"
// @Failure 400 {object} ErrorResponse "Validation Error - missing email or password"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := h.decoder.decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := validation.ValidateLogin(req).Err(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.userRepo.FindByEmail(r.Context(), models.NormalizeEmail(req.Email))
		if err != nil {
			err = wrapDatabaseError("find", "user", err)
			if !errs.IsNotFound(err) {
				h.responder.WriteError(w, err)
				return
			}
			dummyUser().CheckPassword(req.Password)
			h.responder.WriteError(w, errs.InvalidCredentials)
			return
		}
		if !user.CheckPassword(req.Password) || !user.IsActive {
			h.responder.WriteError(w, errs.InvalidCredentials)
			return
		}

		pair, err := h.tokens.IssuePair(user.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue tokens", err))
			return
		}

		if err := h.userRepo.UpdateLastLogin(r.Context(), user.ID, time.Now()); err != nil {
			h.logger.Warn().Err(err).Uint("userID", user.ID).Msg("failed to record last login")
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Login successful", "tokens", TokensResponse{
			Access:  pair.Access,
			Refresh: pair.Refresh,
		})
	}
}

// refresh issues a new access token for a valid refresh token
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body models.RefreshRequest true "Refresh token"
// @Success 200 {object} TokensResponse "New access token"
// @Failure 401 {object} ErrorResponse "Invalid, expired or revoked refresh token"
// @Router /auth/token/refresh [post]
func (h authHandler) refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.refreshClaims(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		user, err := h.userRepo.FindByID(r.Context(), claims.UserID)
		if err != nil {
			err = wrapDatabaseError("find", "user", err)
			if errs.IsNotFound(err) {
				err = errs.NewInactiveUserError()
			}
			h.responder.WriteError(w, err)
			return
		}
		if !user.IsActive {
			h.responder.WriteError(w, errs.NewInactiveUserError())
			return
		}

		access, err := h.tokens.IssueAccess(user.ID)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to issue token", err))
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", "tokens", TokensResponse{Access: access})
	}
}

// logout revokes a refresh token until it would have expired anyway
// @Summary Logout
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body models.RefreshRequest true "Refresh token"
// @Success 200 {object} map[string]any "Logged out"
// @Failure 401 {object} ErrorResponse "Invalid, expired or revoked refresh token"
// @Router /auth/logout [post]
func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.refreshClaims(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.blacklist.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to revoke token", err))
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Logout successful", "", nil)
	}
}

// refreshClaims decodes the body and returns the claims of a refresh token
// that is valid and not revoked.
func (h authHandler) refreshClaims(w http.ResponseWriter, r *http.Request) (*services.Claims, error) {
	var req models.RefreshRequest
	if err := h.decoder.decodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Refresh) == "" {
		return nil, errs.NewValidationError("refresh", "This field is required.")
	}

	claims, err := h.tokens.Parse(req.Refresh, services.RefreshToken)
	if err != nil {
		return nil, err
	}

	revoked, err := h.blacklist.IsRevoked(r.Context(), claims.ID)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("failed to check token", err)
	}
	if revoked {
		return nil, errs.NewRevokedTokenError()
	}
	return claims, nil
}
