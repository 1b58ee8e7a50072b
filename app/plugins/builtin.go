package plugins

import (
	"context"

	"github.com/kilianp07/bikedash/config"
	"github.com/kilianp07/bikedash/core/dataset"
	"github.com/kilianp07/bikedash/infra/postgres"
)

func init() {
	RegisterSource(config.SourceCSV, func(_ context.Context, cfg config.DatasetConfig) (dataset.Source, func() error, error) {
		return dataset.CSVSource{Path: cfg.Path}, nil, nil
	})
	RegisterSource(config.SourcePostgres, func(ctx context.Context, cfg config.DatasetConfig) (dataset.Source, func() error, error) {
		db, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		src, err := postgres.NewSource(db, cfg.Postgres.Table)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return src, db.Close, nil
	})
}
