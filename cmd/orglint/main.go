// Command orglint checks the headlines of Org documents against
// user-supplied rules expressed as expr-lang expressions. It does not check
// the parser's structural invariants.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var useTOML bool

	root := &cobra.Command{
		Use:   "orglint [files...]",
		Short: "Lint Org documents against structural and style rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(args, configPath, useTOML)
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", ".orglint.yaml", "rule-set file (YAML by default)")
	root.Flags().BoolVar(&useTOML, "toml", false, "treat --config as a TOML rule-set file")
	return root
}
