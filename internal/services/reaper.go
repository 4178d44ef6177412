package services

import (
	"time"

	"go.uber.org/zap"
)

// Reaper periodically sweeps abandoned game sessions out of the manager.
type Reaper struct {
	log      *zap.Logger
	manager  *SessionManager
	interval time.Duration
	cutoff   time.Duration
	stop     chan struct{}
}

func NewReaper(log *zap.Logger, manager *SessionManager, interval, cutoff time.Duration) *Reaper {
	return &Reaper{
		log:      log,
		manager:  manager,
		interval: interval,
		cutoff:   cutoff,
		stop:     make(chan struct{}),
	}
}

// Start runs the reaper in a goroutine.
func (r *Reaper) Start() {
	r.log.Info("Starting session reaper",
		zap.Duration("interval", r.interval),
		zap.Duration("cutoff", r.cutoff))
	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.runSweep()
			case <-r.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop.
func (r *Reaper) Stop() {
	close(r.stop)
}

func (r *Reaper) runSweep() {
	reaped := r.manager.ReapIdle(r.cutoff)
	if reaped > 0 {
		r.log.Info("Session sweep finished",
			zap.Int("reaped", reaped),
			zap.Int("live", r.manager.Count()))
	} else {
		r.log.Debug("Session sweep finished, nothing to reap",
			zap.Int("live", r.manager.Count()))
	}
}
