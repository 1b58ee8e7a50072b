package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bikedash/app"
	"github.com/kilianp07/bikedash/config"
	"github.com/kilianp07/bikedash/infra/logger"
)

// options are the flags shared by every command.
type options struct {
	cfgPath  string
	dataPath string
	start    string
	end      string
	seasons  []string
	weathers []string
	groups   []string
	bins     int
}

// NewRootCmd builds the command tree. Without a subcommand it serves the API.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "bikedash",
		Short:         "Bike rental dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.cfgPath, "config", "c", "", "configuration file (yaml or json)")
	pf.StringVar(&opts.dataPath, "data", "", "CSV dataset, overrides the configured source")
	pf.StringVar(&opts.start, "start", "", "first day of the selection (YYYY-MM-DD)")
	pf.StringVar(&opts.end, "end", "", "last day of the selection (YYYY-MM-DD)")
	pf.StringSliceVar(&opts.seasons, "season", nil, "seasons to keep, by label or code (default all)")
	pf.StringSliceVar(&opts.weathers, "weather", nil, "weather situations to keep, by label or code (default all)")
	pf.StringSliceVar(&opts.groups, "group", nil, "categories: day, month, season, weather (default all)")
	pf.IntVar(&opts.bins, "bins", 0, "histogram bins (default from config)")

	root.AddCommand(
		newServeCmd(opts),
		newSummaryCmd(opts),
		newTrendCmd(opts),
		newGroupsCmd(opts),
		newExportCmd(opts),
		newRenderCmd(opts),
		newImportCmd(opts),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.dataPath != "" {
		cfg.Dataset.Source = config.SourceCSV
		cfg.Dataset.Path = o.dataPath
	}
	if o.bins > 0 {
		cfg.Server.Bins = o.bins
	}
	cfg.Logging.Apply()
	return cfg, nil
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
