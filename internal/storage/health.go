package storage

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// readiness is the availability flag embedded by remote backends. It starts
// as whatever the constructor observed and is updated by the health worker.
type readiness struct {
	ok atomic.Bool
}

func (r *readiness) Ready() bool        { return r.ok.Load() }
func (r *readiness) SetReady(ready bool) { r.ok.Store(ready) }

// Probe is a backend whose readiness the health worker maintains.
type Probe interface {
	Pinger
	Mode() Mode
	SetReady(bool)
}

// checkOnce pings p and records the outcome. It logs only on transitions.
func checkOnce(ctx context.Context, p Probe, timeout time.Duration, was bool, log logrus.FieldLogger) bool {
	pctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := p.Ping(pctx)
	ok := err == nil
	p.SetReady(ok)
	if log != nil && ok != was {
		entry := log.WithField("mode", p.Mode())
		if ok {
			entry.Info("remote store reachable, switching to remote mode")
		} else {
			entry.WithError(err).Warn("remote store unreachable, queries fall back to local snapshots")
		}
	}
	return ok
}

// StartHealthWorker pings p at startup and then every interval until ctx is
// done, so the remote/local decision follows the store's availability
// without a restart.
func StartHealthWorker(ctx context.Context, p Probe, interval, timeout time.Duration, log logrus.FieldLogger) {
	if interval <= 0 {
		interval = time.Minute
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	go func() {
		last := checkOnce(ctx, p, timeout, true, log)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				last = checkOnce(ctx, p, timeout, last, log)
			}
		}
	}()
}
