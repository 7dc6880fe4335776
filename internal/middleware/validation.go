package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// MaxBodyBytes caps decoded request bodies
const MaxBodyBytes = 1 << 20

var validate = validator.New()

// ValidateRequest validates the request body against a struct with validation tags
func ValidateRequest(v interface{}) error {
	return validate.Struct(v)
}

// ErrMalformedBody reports a request body that is not valid JSON for the target
var ErrMalformedBody = errors.New("malformed request body")

// DecodeAndValidate decodes JSON request body and validates it
func DecodeAndValidate(r *http.Request, v interface{}) error {
	if err := Decode(r, v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// Decode decodes a JSON request body, rejecting trailing data. Unknown
// fields, such as a client-computed total_amount, are discarded.
func Decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON value", ErrMalformedBody)
	}
	return nil
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var errs []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return errs
}

// RespondWithDecodeError reports a body that failed decoding or tag
// validation as 400
func RespondWithDecodeError(w http.ResponseWriter, err error) {
	if formatted := FormatValidationErrors(err); len(formatted) > 0 {
		RespondWithValidationErrors(w, formatted)
		return
	}
	RespondWithError(w, http.StatusBadRequest, err.Error())
}

func getErrorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "gt":
		return "Value must be greater than " + e.Param()
	case "lt":
		return "Value must be less than " + e.Param()
	case "dive":
		return "Invalid list element"
	default:
		return "Invalid value"
	}
}
