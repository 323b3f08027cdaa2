package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/stilch/internal/app"
	"github.com/bnema/stilch/internal/backend"
	"github.com/bnema/stilch/internal/config"
	"github.com/bnema/stilch/internal/logger"
	"github.com/spf13/cobra"
)

// runRun is the root command's default action: load settings and the
// optional bindsym/output config, construct an App and run it until a
// signal or backend failure, the same shape the teacher's
// cmd/server.go's runServer takes before it hands off to a tea.Program.
func runRun(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	logger.SetLevel(settings.LogLevel)

	var layoutCfg *config.Layout
	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return err
		}
		defer f.Close()
		layoutCfg, err = config.ParseLayout(f)
		if err != nil {
			return err
		}
	}

	kind := backend.Kind(settings.DefaultBackend)
	if backendFlag != "" {
		kind, err = backend.ParseKind(backendFlag)
		if err != nil {
			return err
		}
	}
	if testBackend {
		kind = backend.Test
	}

	displays := resolveDisplays(layoutCfg)
	a, err := app.New(settings, layoutCfg, displays, kind)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	return a.Run(ctx)
}
