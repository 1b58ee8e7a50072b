package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/bikedash/app"
	"github.com/kilianp07/bikedash/config"
	"github.com/kilianp07/bikedash/core/metrics"
	"github.com/kilianp07/bikedash/infra/logger"
	"github.com/kilianp07/bikedash/infra/postgres"
)

func newImportCmd(opts *options) *cobra.Command {
	var dsn, table string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the CSV dataset into a PostgreSQL table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Dataset.Source != config.SourceCSV {
				return fmt.Errorf("import reads a csv dataset, got source %s", cfg.Dataset.Source)
			}
			if dsn == "" {
				dsn = cfg.Dataset.Postgres.DSN
			}
			if table == "" {
				table = cfg.Dataset.Postgres.Table
			}
			if dsn == "" {
				return fmt.Errorf("a postgres dsn is required")
			}
			ctx := cmd.Context()
			ds, err := app.LoadDataset(ctx, cfg.Dataset, metrics.NopSink{})
			if err != nil {
				return err
			}
			db, err := postgres.Open(ctx, dsn)
			if err != nil {
				return err
			}
			defer db.Close()
			src, err := postgres.NewSource(db, table)
			if err != nil {
				return err
			}
			if err := src.CreateTable(ctx); err != nil {
				return err
			}
			if err := src.Import(ctx, ds.Records()); err != nil {
				return err
			}
			logger.New("import").Infof("imported %d records into %s", ds.Len(), src.Table)
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "postgres connection string (default from config)")
	cmd.Flags().StringVar(&table, "table", "", "destination table (default from config)")
	return cmd
}
