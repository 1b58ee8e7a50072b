package dashboard

import (
	"sync"
	"time"

	"github.com/kilianp07/bikedash/core/dataset"
	"github.com/kilianp07/bikedash/core/model"
	"github.com/kilianp07/bikedash/internal/eventbus"
)

// ViewChanged is published after the session accepted a new selection.
type ViewChanged struct {
	Dashboard Dashboard
	Time      time.Time
}

// Session keeps the current selection and the last dashboard computed from
// it. A rejected update leaves both untouched.
type Session struct {
	mu      sync.RWMutex
	ds      *dataset.Dataset
	opts    Options
	current Dashboard
	bus     *eventbus.Bus[ViewChanged]
}

// NewSession starts a session on the default selection. bus may be nil.
func NewSession(ds *dataset.Dataset, opts Options, bus *eventbus.Bus[ViewChanged]) (*Session, error) {
	d, err := Build(ds, model.DefaultCriteria(ds.Bounds()), opts)
	if err != nil {
		return nil, err
	}
	return &Session{ds: ds, opts: opts, current: d, bus: bus}, nil
}

// Current returns the dashboard of the current selection.
func (s *Session) Current() Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update recomputes the dashboard for c. groups nil keeps the session's
// categories. On error the previous dashboard stays current. Updates are
// serialised and published in the order they were applied.
func (s *Session) Update(c model.FilterCriteria, groups []model.GroupKey) (Dashboard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := s.opts
	if groups != nil {
		opts.Groups = groups
	}
	d, err := Build(s.ds, c, opts)
	if err != nil {
		return Dashboard{}, err
	}
	s.current = d
	s.opts = opts
	if s.bus != nil {
		s.bus.Publish(ViewChanged{Dashboard: d, Time: time.Now()})
	}
	return d, nil
}
