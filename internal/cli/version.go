package cli

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/dotview/pkg/buildinfo"
	"github.com/matzehuels/dotview/pkg/engine"
)

// versionCommand prints build information and the layout engine in use.
func (c *CLI) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and engine information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.out, StyleTitle.Render(appName)+" "+StyleValue.Render(buildinfo.Version))
			printKeyValue("Commit", buildinfo.Commit)
			printKeyValue("Built", buildinfo.Date)

			command := c.Config.Engine.Command
			if command == "" {
				command = engine.DefaultCommand
			}
			printKeyValue("Engine", engineVersion(command))
			if c.Config.Engine.Builtin {
				printKeyValue("Builtin", "enabled")
			}
			return nil
		},
	}
}

// engineVersion reports the first line of `<command> -V`, which Graphviz
// prints on stderr.
func engineVersion(command string) string {
	path, err := exec.LookPath(command)
	if err != nil {
		return StyleWarning.Render(command + " not found")
	}
	out, err := exec.Command(path, "-V").CombinedOutput()
	if err != nil && len(out) == 0 {
		return path
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return line
}
