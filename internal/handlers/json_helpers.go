package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/AhmedTrying/malaysiasafd/internal/apperrors"
	"github.com/AhmedTrying/malaysiasafd/internal/middleware"
	"github.com/AhmedTrying/malaysiasafd/internal/models"
	"github.com/AhmedTrying/malaysiasafd/internal/service"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// JSONResponse sends a JSON response and ensures slices are never null.
//
// The dashboard frontend iterates over every list it receives, so nil slices
// must encode as [] rather than null. Use respondWithJSON or this helper
// instead of encoding directly.
func JSONResponse(w http.ResponseWriter, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(normalizeSlices(data))
}

var timeType = reflect.TypeOf(time.Time{})

// normalizeSlices recursively ensures all nil slices become empty slices
func normalizeSlices(data interface{}) interface{} {
	if data == nil {
		return data
	}

	v := reflect.ValueOf(data)

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return data
		}
		elem := v.Elem()
		if elem.Type() == timeType {
			return data
		}

		result := reflect.New(elem.Type())
		result.Elem().Set(reflect.ValueOf(normalizeSlices(elem.Interface())))
		return result.Interface()

	case reflect.Slice:
		if v.IsNil() {
			return reflect.MakeSlice(v.Type(), 0, 0).Interface()
		}
		result := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := 0; i < v.Len(); i++ {
			// nil interface elements have nothing to normalize
			if n := normalizeSlices(v.Index(i).Interface()); n != nil {
				result.Index(i).Set(reflect.ValueOf(n))
			}
		}
		return result.Interface()

	case reflect.Struct:
		if v.Type() == timeType || hasUnexported(v.Type()) {
			return data
		}

		result := reflect.New(v.Type()).Elem()
		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)

			switch {
			case field.Type() == timeType:
				result.Field(i).Set(field)
			case field.Kind() == reflect.Slice || field.Kind() == reflect.Ptr || field.Kind() == reflect.Struct:
				result.Field(i).Set(reflect.ValueOf(normalizeSlices(field.Interface())))
			default:
				result.Field(i).Set(field)
			}
		}
		return result.Interface()
	}

	return data
}

// hasUnexported reports whether rebuilding t field by field would drop state
func hasUnexported(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(normalizeSlices(payload))
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithServiceError maps a service error onto its HTTP status
func respondWithServiceError(w http.ResponseWriter, err error) {
	var classification *apperrors.ClassificationError

	switch {
	case apperrors.IsValidation(err):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &classification):
		slog.Warn("Prediction service unavailable", "error", err)
		respondWithError(w, http.StatusBadGateway, ErrMsgClassifierUnavailable)
	case apperrors.IsNotFound(err):
		respondWithError(w, http.StatusNotFound, err.Error())
	case apperrors.IsUnauthorized(err):
		respondWithError(w, http.StatusForbidden, err.Error())
	case apperrors.IsConflict(err):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, ErrMsgInvalidCredentials)
	case errors.Is(err, service.ErrUserInactive):
		respondWithError(w, http.StatusUnauthorized, ErrMsgAccountInactive)
	case errors.Is(err, service.ErrRegistrationDisabled):
		respondWithError(w, http.StatusForbidden, ErrMsgRegistrationDisabled)
	default:
		slog.Error("Request failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
	}
}

// decodeJSON reads a bounded JSON body into v and answers 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return false
	}
	return true
}

// requireActor returns the authenticated caller or answers 401
func requireActor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
	}
	return actor, ok
}

// pathID parses a numeric path value
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// caseIDParam reads a case id from the path. The leading '#' may be omitted
// since clients would otherwise have to escape it.
func caseIDParam(r *http.Request) string {
	id := strings.TrimSpace(r.PathValue("caseId"))
	if id != "" && !strings.HasPrefix(id, "#") {
		id = "#" + id
	}
	return id
}

// queryInt reads a positive integer query parameter, falling back to def
func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
