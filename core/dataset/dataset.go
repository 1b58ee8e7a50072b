// Package dataset holds the immutable in-memory rental dataset and the
// loaders that build it.
package dataset

import (
	"errors"

	"github.com/kilianp07/bikedash/core/model"
)

// ErrNoRecords is returned when a source contains a header but no rows.
var ErrNoRecords = errors.New("dataset has no records")

// Dataset is the ordered, read-only sequence of records for the observed
// period. It is safe for concurrent readers.
type Dataset struct {
	records []model.Record
	bounds  model.DateRange
}

// New builds a Dataset from records, keeping their order. The slice is copied.
func New(records []model.Record) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	ds := &Dataset{records: append([]model.Record(nil), records...)}
	ds.bounds = model.DateRange{Start: records[0].Date, End: records[0].Date}
	for _, r := range records[1:] {
		if r.Date.Before(ds.bounds.Start) {
			ds.bounds.Start = r.Date
		}
		if r.Date.After(ds.bounds.End) {
			ds.bounds.End = r.Date
		}
	}
	return ds, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// At returns the i-th record.
func (d *Dataset) At(i int) model.Record { return d.records[i] }

// Records returns a copy of every record.
func (d *Dataset) Records() []model.Record {
	return append([]model.Record(nil), d.records...)
}

// Bounds returns the earliest and latest record dates.
func (d *Dataset) Bounds() model.DateRange { return d.bounds }
