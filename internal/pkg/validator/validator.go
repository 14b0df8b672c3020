package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Admin role validation
	_ = validate.RegisterValidation("admin_role", func(fl validator.FieldLevel) bool {
		return rbac.IsRole(fl.Field().String())
	})

	// Permission catalog validation
	_ = validate.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return rbac.IsPermission(fl.Field().String())
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	fieldErrors := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			fieldErrors[field] = "This field is required"
		case "email":
			fieldErrors[field] = "Invalid email format"
		case "min":
			fieldErrors[field] = "Value is too short (min: " + fe.Param() + ")"
		case "max":
			fieldErrors[field] = "Value is too long (max: " + fe.Param() + ")"
		case "admin_role":
			fieldErrors[field] = "Invalid role. Must be one of: " + joinRoles()
		case "permission":
			fieldErrors[field] = "Unknown permission"
		default:
			fieldErrors[field] = "Invalid value"
		}
	}

	return fieldErrors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}

func joinRoles() string {
	roles := rbac.AllRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}
