package relay

import "time"

// heartbeat sends a heartbeat to stats periodically
type heartbeat struct {
	app      *App
	interval time.Duration
	stop     chan struct{}
}

func newHeartbeat(a *App, interval time.Duration) *heartbeat {
	return &heartbeat{
		app:      a,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start starts sending a heartbeat
func (h *heartbeat) Start() {
	tick := time.NewTicker(h.interval)
	defer tick.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-tick.C:
			tags := map[string]string{
				"type": h.app.Ctx().Name(),
			}

			h.app.Ctx().Stats().Histogram("heartbeat", 1, tags)
		}
	}
}

// Stop stops sending a heartbeat
func (h *heartbeat) Stop() {
	close(h.stop)
}
