package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/montevideo/internal/service/validate"
)

const (
	ValidationErrorType = "validation_failed"
	DecodingErrorType   = "decoding_failed"
	ServiceErrorType    = "service_error"
)

// Validator with custom rules; field names taken from 'json' tags
var v = validate.New()

type Struct any

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusOK)
}

// Render data with 201 Created status
func Created(w http.ResponseWriter, data any) {
	jsonWithStatus(w, data, http.StatusCreated)
}

// Render ServiceError
func ServiceError(w http.ResponseWriter, error string, code int) {
	response := ErrorResponse{
		Error:   ServiceErrorType,
		Message: error,
	}

	jsonWithStatus(w, response, code)
}

// Render json DecodeError
func DecodeError(w http.ResponseWriter, err error) {
	response := ErrorResponse{
		Error:   DecodingErrorType,
		Message: "",
	}

	// Try to provide more specific error message based on error type
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		response.Message = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	default:
		response.Message = fmt.Sprintf("Failed to parse JSON: %s", err.Error())
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// Render ValidationErrors
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make(map[string]string, len(errs))
	for _, fieldError := range errs {
		fields[fieldError.Field()] = fieldMessage(fieldError.Tag(), fieldError.Param())
	}

	validationFailed(w, fields)
}

// Render validation failure reported by service: field name → failed rule
func ValidationFields(w http.ResponseWriter, rules map[string]string) {
	fields := make(map[string]string, len(rules))
	for field, rule := range rules {
		fields[field] = fieldMessage(rule, "")
	}

	validationFailed(w, fields)
}

// BindAndValidate decodes JSON request body into type T and validates it using struct tags.
// Returns the decoded value and writes appropriate error responses for decoding or validation failures.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = v.Struct(value)
	if err != nil {
		// pretty sure cast will be ok cause expecting T is valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// User-friendly error message based on validation tag
func fieldMessage(tag string, param string) string {
	switch tag {
	case "required":
		return "This field is required"
	case "min":
		if param == "" {
			return "Value is too short"
		}
		return fmt.Sprintf("Value is too short (minimum %s)", param)
	case "max":
		if param == "" {
			return "Value is too long"
		}
		return fmt.Sprintf("Value is too long (maximum %s)", param)
	case "email":
		return "Invalid email address"
	case "strict_url":
		return "Invalid URL"
	case "singleline":
		return "Value must not contain line breaks"
	case "tagmarker":
		return "Tags must start with '#'"
	case "integer", "boolean":
		return "Value must be " + tag
	case "range":
		return "Value is out of range"
	default:
		return "Invalid value"
	}
}

func validationFailed(w http.ResponseWriter, fields map[string]string) {
	response := ErrorResponse{
		Error:   ValidationErrorType,
		Message: "Request validation failed",
		Fields:  fields,
	}

	jsonWithStatus(w, response, http.StatusBadRequest)
}

// renderJSONWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
