package config

import (
	"fmt"

	"github.com/kilianp07/bikedash/infra/postgres"
)

// Dataset sources.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// DatasetConfig selects where records are loaded from.
type DatasetConfig struct {
	// Source is "csv" or "postgres".
	Source   string          `json:"source"`
	Path     string          `json:"path"`
	Postgres postgres.Config `json:"postgres"`
}

// SetDefaults applies sane defaults.
func (c *DatasetConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = SourceCSV
	}
	if c.Source == SourceCSV && c.Path == "" {
		c.Path = "data/day.csv"
	}
	if c.Postgres.Table == "" {
		c.Postgres.Table = postgres.DefaultTable
	}
}

// Validate checks mandatory fields.
func (c DatasetConfig) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.Path == "" {
			return fmt.Errorf("path is required")
		}
	case SourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required")
		}
	default:
		return fmt.Errorf("unknown source %s", c.Source)
	}
	return nil
}
