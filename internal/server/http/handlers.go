package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/readcircle/book-recommendation-service/internal/domain"
	"github.com/readcircle/book-recommendation-service/internal/observability"
)

// maxRequestBodySize caps JSON request bodies at 1MB.
const maxRequestBodySize = 1 << 20

// decodeJSON decodes the request body into dst and validates it.
// It writes the error response itself and reports success to the caller.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}

	return true
}

// validationMessage renders the first validator failure as a readable message.
func validationMessage(err error) string {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return fmt.Sprintf("%s failed validation on '%s'", fe.Field(), fe.Tag())
	}
	return "invalid request"
}

// authenticatedUserID reads the user ID placed on the context by the auth
// middleware. The middleware guarantees presence on protected routes.
func authenticatedUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := observability.UserIDFromContext(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps a domain error to an HTTP status and writes it.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	var apiErr *domain.ExternalAPIError

	switch {
	case errors.As(err, &apiErr):
		writeError(w, http.StatusBadGateway, fmt.Sprintf("metadata provider error: %s", apiErr.Source))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses a path parameter as a UUID, writing the error response
// on failure.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}
