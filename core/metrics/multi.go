package metrics

// MultiSink fans out events to several sinks. Optional recorder interfaces
// are forwarded only to the sinks implementing them.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordQuery forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordQuery(ev QueryEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordQuery(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordDataset forwards dataset loads.
func (m *MultiSink) RecordDataset(ev DatasetEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(DatasetRecorder); ok {
			if err := rec.RecordDataset(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordView forwards view snapshots.
func (m *MultiSink) RecordView(ev ViewEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ViewRecorder); ok {
			if err := rec.RecordView(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
