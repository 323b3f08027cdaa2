package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/stilch/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate a bindsym/output config file",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Parse a config file and report any error, without running the compositor",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	layout, err := config.ParseLayout(f)
	if err != nil {
		return err
	}

	fmt.Printf("%s: ok (%d bindsym, %d output, %d virtual_output)\n",
		args[0], len(layout.Binds), len(layout.Outputs), len(layout.VirtualOutputs))
	return nil
}
