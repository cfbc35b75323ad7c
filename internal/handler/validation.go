package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"procurement/internal/apperror"
	"procurement/internal/middleware"
	"procurement/internal/policy"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json name
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "uuid":
		return "must be a valid UUID"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// bindingError converts a gin binding failure into a validation error
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			field := fe.Namespace()
			if i := strings.Index(field, "."); i >= 0 {
				field = field[i+1:]
			}
			fields = append(fields, apperror.FieldError{Field: field, Message: validationMessage(fe)})
		}
		return apperror.Validation("Validation failed", fields...)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.Validation("Validation failed", apperror.FieldError{
			Field:   typeErr.Field,
			Message: "must be of type " + typeErr.Type.String(),
		})
	}
	return apperror.Validation("Invalid request payload")
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Abort(c, bindingError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		response.Abort(c, bindingError(err))
		return false
	}
	return true
}

// pathID parses the :id parameter
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Abort(c, apperror.Validation("Invalid id", apperror.FieldError{Field: "id", Message: "must be a valid UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

func currentPrincipal(c *gin.Context) (policy.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Abort(c, apperror.Unauthenticated("Authorization is missing"))
	}
	return p, ok
}
