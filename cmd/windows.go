package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bnema/stilch/internal/ipc"
	"github.com/spf13/cobra"
)

var windowsJSON bool

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List managed windows",
	RunE:  runWindows,
}

func init() {
	windowsCmd.Flags().BoolVar(&windowsJSON, "json", false, "output in JSON format")
}

func runWindows(cmd *cobra.Command, args []string) error {
	resp, err := runCommand(ipc.Request{Type: "GetWindows"})
	if err != nil {
		return err
	}

	if windowsJSON {
		return json.NewEncoder(os.Stdout).Encode(resp.Windows)
	}

	if len(resp.Windows) == 0 {
		fmt.Println("no windows")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWORKSPACE\tGEOMETRY\tFOCUSED\tFLOATING\tFULLSCREEN\tVISIBLE")
	for _, win := range resp.Windows {
		fmt.Fprintf(w, "%d\t%d\t%dx%d+%d+%d\t%v\t%v\t%v\t%v\n",
			win.ID, win.Workspace, win.W, win.H, win.X, win.Y, win.Focused, win.Floating, win.Fullscreen, win.Visible)
	}
	return w.Flush()
}
