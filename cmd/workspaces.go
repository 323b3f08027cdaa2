package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bnema/stilch/internal/ipc"
	"github.com/spf13/cobra"
)

var workspacesJSON bool

var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List workspaces and which output each is mounted on",
	RunE:  runWorkspaces,
}

func init() {
	workspacesCmd.Flags().BoolVar(&workspacesJSON, "json", false, "output in JSON format")
}

func runWorkspaces(cmd *cobra.Command, args []string) error {
	resp, err := runCommand(ipc.Request{Type: "GetWorkspaces"})
	if err != nil {
		return err
	}

	if workspacesJSON {
		return json.NewEncoder(os.Stdout).Encode(resp.Workspaces)
	}

	if len(resp.Workspaces) == 0 {
		fmt.Println("no workspaces")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tVISIBLE\tFOCUSED\tWINDOWS\tOUTPUT")
	for _, ws := range resp.Workspaces {
		fmt.Fprintf(w, "%d\t%s\t%v\t%v\t%d\t%d\n", ws.ID, ws.Name, ws.Visible, ws.Focused, ws.WindowCount, ws.Output)
	}
	return w.Flush()
}
