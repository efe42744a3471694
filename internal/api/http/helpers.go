package http

import (
	"encoding/json"
	"errors"
	nethttp "net/http"

	"github.com/go-playground/validator/v10"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	authmw "github.com/eduflow/eduflow-lms/internal/auth/middleware"
	"github.com/eduflow/eduflow-lms/internal/rbac"
)

// Handlers only — routes remain in main.go

var validate = validator.New(validator.WithRequiredStructEnabled())

func caller(r *nethttp.Request) (sub, role string) {
	return authmw.SubjectFromContext(r.Context()), rbac.RoleFromContext(r.Context())
}

func writeJSON(w nethttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the tagged error kinds onto HTTP statuses; anything
// unrecognized is a 500 with a generic body.
func writeErr(w nethttp.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, nethttp.StatusUnauthorized, errBody("unauthorized"))
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, nethttp.StatusForbidden, errBody("forbidden"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, nethttp.StatusNotFound, errBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyAttempted):
		writeJSON(w, nethttp.StatusConflict, errBody("test already attempted"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, nethttp.StatusBadRequest, errBody(err.Error()))
	default:
		writeJSON(w, nethttp.StatusInternalServerError, errBody("internal error"))
	}
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// decodeValid decodes the JSON body into v and runs struct validation.
func decodeValid(r *nethttp.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validationf("bad json")
	}
	if err := validate.Struct(v); err != nil {
		return apperr.Validationf("%s", err.Error())
	}
	return nil
}
