package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/gofunds/internal/adapter/http/dto"
	"github.com/iho/gofunds/internal/domain"
	"github.com/iho/gofunds/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// responder writes JSON responses and maps errors to status codes.
type responder struct {
	logger zerolog.Logger
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   http.StatusText(status),
		Code:    code,
		Message: message,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindDuplicateActiveSubscription, domain.KindAlreadyCancelled:
		return http.StatusConflict
	case domain.KindInactive, domain.KindBelowMinimum, domain.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Internal errors are logged and their details hidden.
func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)
	kind := domain.KindOf(err)

	if status == http.StatusInternalServerError {
		log := logger.FromContext(r.Context(), rs.logger)
		if kind == domain.KindIntegrityViolation {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("integrity violation")
		} else {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		}
		writeError(w, status, kind.String(), "internal error")
		return
	}

	writeError(w, status, kind.String(), err.Error())
}

// decode reads a JSON body into dst and validates it.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, false)
}

// decodeOptional is decode for endpoints whose body may be empty.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeBody(w, r, dst, true)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return dto.Validate(dst)
		}
		return domain.Validation("invalid request body: %s", err.Error())
	}
	return dto.Validate(dst)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseBoolQuery parses a boolean query parameter with a default value.
func parseBoolQuery(r *http.Request, key string, defaultValue bool) bool {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return b
}

var errForbidden = &domain.Error{Kind: domain.KindUnauthorized, Message: "not allowed to act for this customer"}

// authorize checks that the caller may act for customerID. Without a principal
// (authentication disabled) every request is allowed.
func authorize(r *http.Request, customerID string) error {
	p, ok := domain.PrincipalFrom(r.Context())
	if !ok || p.CanActFor(customerID) {
		return nil
	}
	return errForbidden
}

// requester resolves the acting customer. Customers act as themselves; admins and
// unauthenticated callers name the customer explicitly.
func requester(r *http.Request, named string) (string, error) {
	p, ok := domain.PrincipalFrom(r.Context())
	if ok && p.Role == domain.RoleCustomer {
		if named != "" && named != p.CustomerID {
			return "", errForbidden
		}
		return p.CustomerID, nil
	}
	if named == "" {
		return "", domain.Validation("customer_id is required")
	}
	return named, nil
}
