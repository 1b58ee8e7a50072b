// Package plugins maps dataset source names to their constructors.
package plugins

import (
	"context"
	"fmt"
	"sort"

	"github.com/kilianp07/bikedash/config"
	"github.com/kilianp07/bikedash/core/dataset"
)

// SourceFactory builds a dataset source from configuration. The returned
// close function releases the source's resources and may be nil.
type SourceFactory func(ctx context.Context, cfg config.DatasetConfig) (dataset.Source, func() error, error)

// Sources holds the registered source factories.
var Sources = map[string]SourceFactory{}

// RegisterSource adds a source factory under name.
func RegisterSource(name string, f SourceFactory) { Sources[name] = f }

// NewSource builds the source selected by cfg.Source.
func NewSource(ctx context.Context, cfg config.DatasetConfig) (dataset.Source, func() error, error) {
	f, ok := Sources[cfg.Source]
	if !ok {
		return nil, nil, fmt.Errorf("unknown dataset source %s (known: %v)", cfg.Source, names())
	}
	return f(ctx, cfg)
}

func names() []string {
	out := make([]string, 0, len(Sources))
	for n := range Sources {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
