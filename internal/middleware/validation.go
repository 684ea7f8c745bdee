package middleware

import (
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/skilltrack/internal/pkg/apperrors"
)

// Validation codes carried on apperrors.CustomError.Code
const (
	ValidationMissing = "missing"
	ValidationInvalid = "invalid"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

// jsonFieldName reports struct fields by their JSON name so messages match the payload
func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	default:
		return name
	}
}

// BindJSON decodes the request body into obj and validates it. Every failing field is
// reported as its own validation error.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]error, 0, len(verrs))
		for _, fe := range verrs {
			code := ValidationInvalid
			if fe.Tag() == "required" {
				code = ValidationMissing
			}
			out = append(out, fieldError(fe.Field(), formatValidationError(fe), code))
		}
		return errors.Join(out...)
	}

	if errors.Is(err, io.EOF) {
		return fieldError("", "request body is required", ValidationMissing)
	}
	return fieldError("", "request body must be a JSON object", ValidationInvalid)
}

func fieldError(field, message, code string) error {
	return &apperrors.CustomError{
		Kind:    apperrors.KindValidation,
		Err:     apperrors.ErrValidationFailed,
		Message: message,
		Field:   field,
		Code:    code,
	}
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
