package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/pkg/engine"
)

// checkCommand creates the check command, a syntax check without layout.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file|->",
		Short: "Check DOT syntax without rendering",
		Long: `Parse a DOT file with the embedded Graphviz library and report the first
syntax error together with the numbered source. No layout engine is run.`,
		Example: `  dotview check graph.dot
  generate-graph | dotview check -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptor, err := readDescriptor(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if err := engine.Validate(descriptor); err != nil {
				return err
			}
			printSuccess("%s is valid", displayName(args[0]))
			return nil
		},
	}
}
