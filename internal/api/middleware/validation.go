package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"scribed/internal/api/errors"
)

// Validator is the domain-rule hook run after struct tag binding.
type Validator interface {
	Validate() error
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "gte", "gt":
		return "is too small"
	case "oneof":
		return "must be one of the allowed values"
	default:
		return "is invalid"
	}
}

func fieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["request"] = "malformed body"
		return fields
	}
	for _, fe := range validationErrs {
		fields[strings.ToLower(fe.Field())] = tagMessage(fe.Tag())
	}
	return fields
}

// ValidateRequest binds the JSON body, runs struct tag validation, then the
// domain Validate hook if the request implements it.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.NewValidationError("Validation failed", fieldErrors(err))
	}
	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuery is ValidateRequest for query strings.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return errors.NewValidationError("Invalid query parameters", fieldErrors(err))
	}
	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
