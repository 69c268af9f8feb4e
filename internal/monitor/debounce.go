package monitor

import (
	"github.com/ThePeze/BershkaStockMonitor/internal/model"
	"github.com/ThePeze/BershkaStockMonitor/internal/state"
)

// Debouncer turns noisy point-in-time reads into confirmed transitions:
// a status must be observed ConfirmCount times in a row before it is
// believed, and a believed status is only notified on the edge (a confirmed
// value different from the last one emitted).
type Debouncer struct {
	// ConfirmCount is the number of consecutive identical observations
	// required before a status is confirmed. Values < 1 mean the default (2).
	ConfirmCount int

	// SuppressInitial silently adopts the first-ever confirmed status of a
	// fresh record as the baseline, so a cold start over a large size set
	// does not produce a notification storm.
	SuppressInitial bool
}

// Observe applies one observation to rec and reports whether a confirmed
// change should be notified. rec is mutated in place.
func (d Debouncer) Observe(rec *state.SizeRecord, curr model.NormalizedStatus) bool {
	if rec.LastSeen != nil && rec.LastSeen.Equal(curr) {
		rec.SeenStreak++
	} else {
		seen := curr
		rec.LastSeen = &seen
		rec.SeenStreak = 1
	}

	confirm := d.ConfirmCount
	if confirm < 1 {
		confirm = 2
	}
	if rec.SeenStreak < confirm {
		return false
	}

	if rec.LastEmitted == nil && d.SuppressInitial {
		emitted := curr
		rec.LastEmitted = &emitted
		return false
	}
	if rec.LastEmitted == nil || !rec.LastEmitted.Equal(curr) {
		emitted := curr
		rec.LastEmitted = &emitted
		return true
	}
	// Confirmed but unchanged from what was already emitted.
	return false
}
