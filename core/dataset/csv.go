package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Source produces a Dataset. Sources are read once at startup.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// CSVSource loads records from a CSV file on disk.
type CSVSource struct {
	Path string
}

// Load opens the file and parses it with ReadCSV.
func (s CSVSource) Load(_ context.Context) (*Dataset, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Path, err)
	}
	return ds, nil
}

// ReadCSV parses a CSV stream with a header row. Columns other than the
// required ones are ignored. Every cell is read as a string so that type
// errors surface as ParseError with a line number.
func ReadCSV(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		// gota reports a header-only or blank input as an empty DataFrame.
		if strings.Contains(df.Err.Error(), "empty DataFrame") {
			return nil, ErrNoRecords
		}
		return nil, fmt.Errorf("read csv: %w", df.Err)
	}
	have := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		have[name] = true
	}
	for _, col := range Columns {
		if !have[col] {
			return nil, &ParseError{Line: 1, Err: fmt.Errorf("missing column %s", col)}
		}
	}
	sel := df.Select(Columns)
	if sel.Err != nil {
		return nil, fmt.Errorf("select columns: %w", sel.Err)
	}
	// Records includes the header as its first row.
	cells := sel.Records()
	rows := make([]RawRow, 0, len(cells)-1)
	for i, c := range cells[1:] {
		rows = append(rows, RawRow{
			Line:    i + 2,
			Date:    c[0],
			Season:  c[1],
			Year:    c[2],
			Month:   c[3],
			Weekday: c[4],
			Weather: c[5],
			Count:   c[6],
		})
	}
	return FromRows(rows)
}
