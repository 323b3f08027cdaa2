package cmd

import (
	"fmt"
	"strconv"

	"github.com/bnema/stilch/internal/ipc"
	"github.com/bnema/stilch/internal/logger"
	"github.com/spf13/cobra"
)

var switchCmd = &cobra.Command{
	Use:   "switch <workspace>",
	Short: "Switch the focused output to the named workspace",
	Long: `Switch mounts the given workspace index on whichever virtual output
currently holds keyboard focus, matching spec §6's SwitchWorkspace command.

Example usage in a config file:
  bindsym $mod+1 workspace 1
`,
	Args: cobra.ExactArgs(1),
	RunE: runSwitch,
}

func runSwitch(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid workspace index %q", args[0])
	}

	logger.Debugf("sending SwitchWorkspace %d", index)
	_, err = runCommand(ipc.Request{Type: "SwitchWorkspace", Index: index})
	if err != nil {
		return err
	}
	fmt.Printf("switched to workspace %d\n", index)
	return nil
}
