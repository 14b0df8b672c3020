package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coachhub/coachhub-api/internal/domain/navigation"
	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool             `json:"valid"`
	Violations []rbac.Violation `json:"violations,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var navFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the permission matrix",
		Long: `Validate the permission matrix: every role has at least one
permission, super_admin holds everything any other role holds and
compliance_admin holds no manage_, create_ or delete_ permission.

With --nav-file the YAML navigation table is parsed as well.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, navFile, cmd)
		},
	}

	cmd.Flags().StringVar(&navFile, "nav-file", "", "also parse this YAML navigation table")

	return cmd
}

func runValidate(opts *RootOptions, navFile string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if navFile != "" {
		dests, err := navigation.LoadFile(navFile)
		if err != nil {
			_ = f.Error(ErrCodeNavigation, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeNavigation, err)
		}
		f.VerboseLog("Navigation table %s: %d destination(s)", navFile, len(dests))
	}

	violations := loadMatrix().Violations()
	if len(violations) > 0 {
		var msgs []string
		for _, v := range violations {
			msgs = append(msgs, v.Error())
		}
		_ = f.Error(ErrCodeInvariant, fmt.Sprintf("%d matrix rule violation(s)", len(violations)), violations)
		if !f.JSON() {
			fmt.Fprintln(f.Writer, "  "+strings.Join(msgs, "\n  "))
		}
		return NewExitError(ExitFailure, ErrCodeInvariant)
	}

	return f.Success(ValidationResult{Valid: true}, "✓ Permission matrix valid\n")
}
