package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type createRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,admin_role"`
	Name  string `json:"name" validate:"required,min=2"`
}

func TestValidate(t *testing.T) {
	errs := Validate(&createRequest{Email: "ops@coachhub.app", Role: "finance_admin", Name: "Ops"})
	assert.Nil(t, errs)

	errs = Validate(&createRequest{Email: "nope", Role: "coach", Name: "O"})
	assert.Equal(t, "Invalid email format", errs["email"])
	assert.Contains(t, errs["role"], "super_admin, branch_admin")
	assert.Equal(t, "Value is too short (min: 2)", errs["name"])
}

func TestValidateVarPermission(t *testing.T) {
	assert.NoError(t, ValidateVar("view_audit_logs", "permission"))
	assert.Error(t, ValidateVar("view_everything", "permission"))
}
