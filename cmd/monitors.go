package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/bnema/stilch/internal/ipc"
	"github.com/spf13/cobra"
)

var monitorsJSON bool

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List the virtual outputs the running compositor has mounted",
	RunE:  runMonitors,
}

func init() {
	monitorsCmd.Flags().BoolVar(&monitorsJSON, "json", false, "output in JSON format")
}

func runMonitors(cmd *cobra.Command, args []string) error {
	resp, err := runCommand(ipc.Request{Type: "GetOutputs"})
	if err != nil {
		return err
	}

	if monitorsJSON {
		return json.NewEncoder(os.Stdout).Encode(resp.Outputs)
	}

	if len(resp.Outputs) == 0 {
		fmt.Println("no virtual outputs mounted")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREGION")
	for _, o := range resp.Outputs {
		fmt.Fprintf(w, "%d\t%s\t%dx%d at (%d,%d)\n", o.ID, o.Name, o.W, o.H, o.X, o.Y)
	}
	return w.Flush()
}
