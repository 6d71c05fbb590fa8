// Package httpx holds the small HTTP helpers shared by every handler:
// JSON responses, gateway identity extraction, and request-body decoding
// with struct-tag validation.
//
// All routes trust the x-user-id header forwarded by the Gateway; this
// service performs no session handling of its own.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrNoUser is returned by UserID when the gateway header is missing or malformed.
var ErrNoUser = errors.New("missing or invalid x-user-id header")

// OK writes v as a 200 JSON response.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// Error writes a JSON error body with the given status code.
func Error(w http.ResponseWriter, msg string, code int) {
	JSON(w, code, map[string]string{"error": msg})
}

// UserID extracts the caller identity forwarded by the Gateway.
func UserID(r *http.Request) (int64, error) {
	raw := r.Header.Get("x-user-id")
	if raw == "" {
		return 0, ErrNoUser
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrNoUser
	}
	return id, nil
}

// Decode unmarshals the JSON request body into dst and validates it against
// its struct tags. The returned error is safe to echo back to the client.
func Decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("field %s failed %q validation", f.Field(), f.Tag())
		}
		return fmt.Errorf("invalid request body")
	}
	return nil
}
