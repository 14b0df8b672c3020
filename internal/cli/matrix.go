package cli

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

// RolePermissions is one row of the matrix output.
type RolePermissions struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand(rootOpts *RootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Print the role/permission matrix",
		Long: `Print every role with the permissions it holds, in catalog order.
Use --role to print a single role.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(rootOpts, role, cmd)
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "only print this role")

	return cmd
}

func runMatrix(opts *RootOptions, roleFlag string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	m := loadMatrix()

	roles := m.Roles()
	if roleFlag != "" {
		role, err := rbac.ParseRole(roleFlag)
		if err != nil {
			_ = f.Error(ErrCodeUnknownRole, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeUnknownRole, err)
		}
		roles = []rbac.Role{role}
	}

	rows := make([]RolePermissions, 0, len(roles))
	for _, role := range roles {
		set, err := m.Permissions(role)
		if err != nil {
			_ = f.Error(ErrCodeUnknownRole, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeUnknownRole, err)
		}
		rows = append(rows, RolePermissions{Role: string(role), Permissions: set.Strings()})
	}

	return f.Success(rows, renderMatrix(rows))
}

func renderMatrix(rows []RolePermissions) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tCOUNT\tPERMISSIONS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", r.Role, len(r.Permissions), strings.Join(r.Permissions, ", "))
	}
	_ = tw.Flush()
	return buf.String()
}
