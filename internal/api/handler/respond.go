package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"loan-service/internal/api/handler/dto"
	"loan-service/internal/pkg/apperrors"
	"log/slog"
	"net/http"
)

var errEmptyBody = errors.New("no request body")

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return errEmptyBody
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":{"message":"Internal server error"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondValidation(w http.ResponseWriter, errs any) {
	respondJSON(w, http.StatusBadRequest, dto.FailureResponse{
		Success: false,
		Code:    dto.CodeValidationError,
		Errors:  errs,
	})
}

func respondError(w http.ResponseWriter, err error) {
	status, code, message, field := http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred.", ""
	var validationError *apperrors.ValidationError
	var appErr *apperrors.AppError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "Resource not found."
	case errors.As(err, &validationError):
		status, code, message, field = http.StatusBadRequest, dto.CodeValidationError, validationError.Message, validationError.Field
	case errors.Is(err, apperrors.ErrInvalidArgument), errors.Is(err, apperrors.ErrValidation):
		status, code, message = http.StatusBadRequest, dto.CodeValidationError, err.Error()
	case errors.Is(err, apperrors.ErrUnauthorized):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"
	case errors.As(err, &appErr):
		slog.Default().Error("Request failed", "code", appErr.Code, "error", err)
		code, message = appErr.Code, appErr.Message
	default:
		slog.Default().Error("Unhandled internal error", "error", err)
	}

	respondJSON(w, status, dto.ErrorResponse{
		Success: false,
		Error: dto.ErrorDetail{
			Code:    code,
			Message: message,
			Field:   field,
		},
	})
}

func invalidBody(err error) error {
	return fmt.Errorf("%w: invalid request body: %v", apperrors.ErrInvalidArgument, err)
}
