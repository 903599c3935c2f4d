package validate

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Tag marker each tag starts with on input
const TagMarker = "#"

// Anchored url grammar: scheme, host (domain, localhost or ipv4), optional port, optional path
var urlRe = regexp.MustCompile(
	`^(?i)(https?|ftp)://` +
		`(localhost|([a-z0-9\p{L}]([a-z0-9\p{L}-]*[a-z0-9\p{L}])?\.)+[a-z\p{L}]{2,}|\d{1,3}(\.\d{1,3}){3})` +
		`(:\d{2,5})?` +
		`(/[^\s]*)?$`,
)

// New validator with custom rules registered and json field names in errors
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Configure(v)
	return v
}

// Register custom rules:
//
//	singleline - string has no newlines
//	strict_url - string matches anchored url grammar
//	tagmarker  - string empty or starts with TagMarker
func Configure(v *validator.Validate) {
	_ = v.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return SingleLine(fl.Field().String())
	})
	_ = v.RegisterValidation("strict_url", func(fl validator.FieldLevel) bool {
		return URL(fl.Field().String())
	})
	_ = v.RegisterValidation("tagmarker", func(fl validator.FieldLevel) bool {
		return Tags(fl.Field().String())
	})
	v.RegisterTagNameFunc(useJSONTagNames)
}

func SingleLine(s string) bool {
	return !strings.ContainsAny(s, "\r\n")
}

func URL(s string) bool {
	return SingleLine(s) && urlRe.MatchString(s)
}

func Tags(s string) bool {
	return s == "" || strings.HasPrefix(s, TagMarker)
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}
