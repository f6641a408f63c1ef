package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rs/zerolog"
)

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.WriteJSONWithStatus(w, http.StatusOK, data)
}

func (r Responder) WriteJSONWithStatus(w http.ResponseWriter, status int, data any) {
	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Check if response is too large (e.g., > 10MB)
	const maxResponseSize = 10 * 1024 * 1024 // 10MB
	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		r.WriteError(w, errs.NewInternalError("The requested data exceeds the maximum response size"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteSuccess writes {success, message, <dataName>: data}. The data key is
// left out when data is nil.
func (r Responder) WriteSuccess(w http.ResponseWriter, status int, message, dataName string, data any) {
	body := map[string]any{
		"success": true,
		"message": message,
	}
	if data != nil && dataName != "" {
		body[dataName] = data
	}
	r.WriteJSONWithStatus(w, status, body)
}

func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr

	// For unexpected errors, log and return generic internal error
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("unexpected error")
		r.WriteJSONWithStatus(w, http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Error: ErrorBody{
				Type:    "Server Error",
				Message: "An unexpected error occurred",
			},
		})
		return
	}

	body := ErrorBody{
		Type:    apiErr.Type(),
		Message: apiErr.Message(),
		Field:   apiErr.Field,
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		r.logger.Error().Str("error", apiErr.GetFullError()).Int("status", apiErr.StatusCode).Msg("request failed")
		if apiErr.StatusCode == http.StatusInternalServerError {
			body.Message = "An unexpected error occurred"
		}
	} else {
		body.Details = apiErr.Details
		if apiErr.Cause != nil {
			r.logger.Debug().Str("error", apiErr.GetFullError()).Msg("request rejected")
		}
	}

	r.WriteJSONWithStatus(w, apiErr.StatusCode, ErrorResponse{Success: false, Error: body})
}

// wrapDatabaseError wraps a database error with context information
func wrapDatabaseError(operation, entity string, cause error) error {
	return errs.NewDatabaseError(operation, entity, cause)
}

const permissionDenied = "You do not have permission to perform this action."

func forbidden() error {
	return errs.NewForbiddenError(permissionDenied)
}

// storeError keeps typed storage errors and reports anything else as the
// store being unavailable.
func storeError(operation string, err error) error {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return errs.NewStorageUnavailableError(operation, err)
}
