package video

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/montevideo/internal/apperrors"
	"github.com/nkiryanov/montevideo/internal/service/validate"
)

// Candidate video as provided by caller
type VideoInput struct {
	URL          string `json:"videoUrl" validate:"singleline,strict_url"`
	Title        string `json:"videoTitle" validate:"singleline,min=4"`
	Description  string `json:"videoDescription"`
	Tags         string `json:"tags" validate:"tagmarker"`
	UploadedBy   string `json:"uploadedBy" validate:"singleline,min=4"`
	ContactEmail string `json:"contactEmail" validate:"email"`
}

// Rejected input fields: field name → failed rule
// Matches apperrors.ErrValidationFailed with errors.Is
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, field+": "+e.Fields[field])
	}
	return fmt.Sprintf("%s: %s", apperrors.ErrValidationFailed, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrValidationFailed
}

var videoValidator = validate.New()

// Check every field rule. Either everything pass or error returned
func Validate(in VideoInput) error {
	err := videoValidator.Struct(in)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("%w: %w", apperrors.ErrValidationFailed, err)
	}

	verr := &ValidationError{Fields: make(map[string]string, len(errs))}
	for _, e := range errs {
		verr.Fields[e.Field()] = e.Tag()
	}
	return verr
}
