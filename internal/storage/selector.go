package storage

import (
	"context"

	"hotelmetrics/internal/model"
)

// Selector picks the backend for each call: the remote one while it is
// configured and ready, the local one otherwise. The decision is made per
// call, and a failing remote call is returned as-is rather than retried
// against the local backend.
type Selector struct {
	Remote Backend
	Local  Backend
}

// NewSelector combines a remote backend (may be nil) with a local one.
func NewSelector(remote, local Backend) *Selector {
	return &Selector{Remote: remote, Local: local}
}

// Active returns the backend the next call will use.
func (s *Selector) Active() Backend {
	if s.Remote != nil && s.Remote.Ready() {
		return s.Remote
	}
	return s.Local
}

// Mode reports the mode of the active backend.
func (s *Selector) Mode() Mode {
	return s.Active().Mode()
}

// Save persists doc's samples in the active backend.
func (s *Selector) Save(ctx context.Context, doc model.IngestionDocument) (SaveResult, error) {
	return s.Active().Save(ctx, doc)
}
