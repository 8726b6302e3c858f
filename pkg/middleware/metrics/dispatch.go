package metrics

import "time"

// Dispatch records router outcomes; pass it to core.WithObserver.
type Dispatch struct{}

func (Dispatch) ObserveDispatch(destination, outcome string, d time.Duration) {
	// Unknown names come from callers; keep them out of the label space.
	if outcome == "invalid_destination" {
		destination = ""
	}
	totalDispatches.WithLabelValues(destination, outcome).Inc()
	dispatchTime.WithLabelValues(destination).Observe(d.Seconds())
}
