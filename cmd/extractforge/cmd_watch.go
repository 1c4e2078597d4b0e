package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"extractforge/internal/config"
	"extractforge/internal/constraints"
	"extractforge/internal/logging"
)

var watchCmd = &cobra.Command{
	Use:   "watch <project.yaml>",
	Short: "Hot-reload a project's constraint policy as project.yaml is edited",
	Long: `Watches project.yaml and re-applies its constraints block to a live Engine on every
save, without restarting a generation run. Runs until interrupted (Ctrl-C / SIGTERM).`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	path := args[0]

	projectCfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	engine := constraints.NewEngine(projectCfg.Constraints)

	watcher, err := config.NewWatcher(path, engine)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	ctx := cmd.Context()
	watcher.Start(ctx)
	defer watcher.Stop()

	fmt.Printf("watching %s for constraint policy changes (ctrl-c to stop)...\n", path)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		logging.Get(logging.CategoryCLI).Info("watch stopped by signal")
	case <-ctx.Done():
	}
	return nil
}
