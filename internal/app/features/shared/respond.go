// Package shared holds the small helpers every feature handler uses:
// JSON responses, error-to-status mapping, and resolving the signed-in
// session user to their full document.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/attesthub/internal/app/system/apperr"
	"github.com/dalemusser/attesthub/internal/app/system/auth"
	"github.com/dalemusser/attesthub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrNotSignedIn is returned by RequestUser when no session user is present.
var ErrNotSignedIn = errors.New("not signed in")

// Error maps an application error to its HTTP status: ValidationError to
// 400, NotFoundError to 404, ConflictError (duplicate email, duplicate
// engagement name) to 409, a missing session to 401, anything else to 500.
// Internal errors are logged but not echoed to the client.
func Error(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, ErrNotSignedIn):
		JSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case apperr.IsValidation(err):
		JSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case apperr.IsNotFound(err):
		JSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case apperr.IsConflict(err):
		JSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		JSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// UserLoader loads a full user document by id.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequestUser resolves the session user on r to their full document. The
// session only identifies the user; roles and status always come from the
// document so revocations apply on the next request.
func RequestUser(r *http.Request, users UserLoader) (*models.User, error) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		return nil, ErrNotSignedIn
	}
	id, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		return nil, apperr.Validationf("malformed session user id")
	}
	return users.GetByID(r.Context(), id)
}

// Forbidden writes a 403 response.
func Forbidden(w http.ResponseWriter) {
	JSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
}
