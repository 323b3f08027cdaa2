package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/stilch/internal/ipc"
	"github.com/spf13/cobra"
)

var statusShowIDs bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a live ASCII snapshot of the compositor's layout tree",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusShowIDs, "ids", false, "annotate each window with its ID")
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := runCommand(ipc.Request{Type: "GetAsciiSnapshot", ShowIDs: statusShowIDs, ShowFocus: true})
	if err != nil {
		return err
	}

	var out strings.Builder
	out.WriteString(resp.Snapshot)
	out.WriteString("\n")

	workspaces, err := runCommand(ipc.Request{Type: "GetWorkspaces"})
	if err == nil {
		visible := 0
		for _, ws := range workspaces.Workspaces {
			if ws.Visible {
				visible++
			}
		}
		fmt.Fprintf(&out, "\n%d workspace(s) mounted\n", visible)
	}

	fmt.Print(out.String())
	return nil
}
