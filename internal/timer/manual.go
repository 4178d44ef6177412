package timer

import "time"

// ManualTicker is a Ticker driven by explicit Tick calls. Used in tests
// to step countdowns deterministically.
type ManualTicker struct {
	ch chan time.Time
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time)}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {}

// Tick delivers one tick, blocking until the countdown goroutine picks
// it up or the countdown has been cancelled.
func (m *ManualTicker) Tick() {
	select {
	case m.ch <- time.Now():
	case <-time.After(time.Second):
	}
}
