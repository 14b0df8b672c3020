package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

// CheckResult is the outcome of a single permission check.
type CheckResult struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
	Granted    bool   `json:"granted"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <role> <permission>",
		Short: "Check whether a role holds a permission",
		Long: `Check whether a role holds a permission.

Exits 0 when granted, 1 when denied and 2 when the role or permission
is not in the catalog.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, roleArg, permArg string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	granted, err := loadMatrix().HasPermission(rbac.Role(roleArg), rbac.Permission(permArg))
	if err != nil {
		code := ErrCodeGeneric
		switch {
		case errors.Is(err, rbac.ErrUnknownRole):
			code = ErrCodeUnknownRole
		case errors.Is(err, rbac.ErrUnknownPermission):
			code = ErrCodeUnknownPermission
		}
		_ = f.Error(code, err.Error(), nil)
		return WrapExitError(ExitCommandError, code, err)
	}

	result := CheckResult{Role: roleArg, Permission: permArg, Granted: granted}
	verdict := "granted"
	if !granted {
		verdict = "denied"
	}
	if err := f.Success(result, fmt.Sprintf("%s: %s %s\n", verdict, roleArg, permArg)); err != nil {
		return err
	}

	if !granted {
		return NewExitError(ExitFailure, fmt.Sprintf("%s does not hold %s", roleArg, permArg))
	}
	return nil
}
