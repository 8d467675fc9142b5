// Package cli builds the shopd command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/bus"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/config"
)

// NewRootCommand returns the shopd root command with every subcommand attached.
func NewRootCommand(version string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "shopd",
		Short:         "Multi-tenant shop API and event worker",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (SHOP_* env vars override)")

	load := func() (config.Loaded, error) {
		return config.Load(configPath)
	}

	root.AddCommand(
		serveCommand("api", "Serve the REST API and publish events", load, runAPI),
		serveCommand("worker", "Consume events, record activity, and push notifications", load, runWorker),
		serveCommand("all", "Run API and worker in one process over an in-memory bus", load, runAll),
		migrateCommand(load),
	)
	return root
}

type runner func(ctx context.Context, cfg config.Loaded) error

func serveCommand(use, short string, load func() (config.Loaded, error), run runner) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			stop, err := startProfiler(cfg.Profiling, use)
			if err != nil {
				return err
			}
			defer stop()
			return run(cmd.Context(), cfg)
		},
	}
}

func migrateCommand(load func() (config.Loaded, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			// migrate never touches the bus
			cfg.Bus.Driver = bus.DriverMemory
			rt, err := openRuntime(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			logs.Infof("migration finished")
			return nil
		},
	}
}
