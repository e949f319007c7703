package cli

import (
	"github.com/spf13/cobra"

	"github.com/m43i/go-scrapybara/internal/version"
)

func newVersionCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show scrapybara CLI version",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(cmd.OutOrStdout(), opts.Output, "")
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, version.Get())
		},
	}
}
