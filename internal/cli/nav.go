package cli

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coachhub/coachhub-api/internal/domain/navigation"
	"github.com/coachhub/coachhub-api/internal/domain/rbac"
)

// NewNavCommand creates the nav command.
func NewNavCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "nav <role>",
		Short: "Show the navigation a role sees",
		Long: `Show the admin navigation destinations visible to a role, in table
order. Hidden destinations are omitted. Use --file to preview a YAML
navigation table instead of the built-in one.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNav(rootOpts, args[0], file, cmd)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML navigation table")

	return cmd
}

func runNav(opts *RootOptions, roleArg, file string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	dests, err := navigation.LoadFile(file)
	if err != nil {
		_ = f.Error(ErrCodeNavigation, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeNavigation, err)
	}
	f.VerboseLog("Loaded %d destination(s)", len(dests))

	role, err := rbac.ParseRole(roleArg)
	if err != nil {
		_ = f.Error(ErrCodeUnknownRole, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeUnknownRole, err)
	}

	visible, err := navigation.Filter(role, dests)
	if err != nil {
		_ = f.Error(ErrCodeNavigation, err.Error(), nil)
		return WrapExitError(ExitCommandError, ErrCodeNavigation, err)
	}

	return f.Success(visible, renderNav(visible))
}

func renderNav(dests []navigation.Destination) string {
	if len(dests) == 0 {
		return "(no destinations)\n"
	}
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTITLE\tPATH\tPERMISSION")
	for _, d := range dests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Key, d.Title, d.Path, d.Permission)
	}
	_ = tw.Flush()
	return buf.String()
}
