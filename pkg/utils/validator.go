// Package utils provides shared helpers for the CRS service.
package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/turtacn/crs/pkg/errors"
)

var defaultValidator *validator.Validate

// semverPattern accepts MAJOR.MINOR.PATCH with optional pre-release tag.
var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)

func init() {
	defaultValidator = validator.New()
	defaultValidator.RegisterValidation("uuid", validateUUID)
	defaultValidator.RegisterValidation("semver", validateSemver)
}

// ValidateStruct validates a struct against its validate tags and returns a
// structured invalid_request error listing every failing field.
func ValidateStruct(s interface{}) errors.CRSError {
	err := defaultValidator.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidRequest(err.Error())
	}

	crsErr := errors.ErrInvalidRequest("request validation failed")
	for _, fe := range validationErrors {
		crsErr = crsErr.WithMetadata(toSnakeCase(fe.Field()), formatValidationError(fe))
	}
	return crsErr
}

func validateUUID(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}

func validateSemver(fl validator.FieldLevel) bool {
	return semverPattern.MatchString(fl.Field().String())
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid UUID"
	case "semver":
		return "must be a semantic version (MAJOR.MINOR.PATCH)"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
