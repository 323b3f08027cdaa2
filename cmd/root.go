package cmd

import (
	"github.com/bnema/stilch/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set during build.
	Version = "0.1.0-dev"

	configPath   string
	backendFlag  string
	testBackend  bool
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "stilch",
	Short: "stilch - a scriptable tiling Wayland compositor",
	Long: `stilch is a tiling Wayland compositor with a recursive split/tabbed/
stacked layout tree, millimetre-aware cursor routing across mismatched
displays, and a scriptable control/test socket pair for driving it from
the outside.`,
	SilenceUsage: true,
	RunE:         runRun,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a bindsym/output config file")
	rootCmd.PersistentFlags().StringVarP(&logLevelFlag, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVarP(&backendFlag, "backend", "b", "", "display backend: winit, x11, tty-udev (default: config's default_backend)")
	rootCmd.Flags().BoolVar(&testBackend, "test", false, "run the interactive ASCII test backend instead of a real one")

	rootCmd.AddCommand(monitorsCmd)
	rootCmd.AddCommand(workspacesCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func loadSettings() (*config.Settings, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	settings := config.Get()
	if logLevelFlag != "" {
		settings.LogLevel = logLevelFlag
	}
	return settings, nil
}
