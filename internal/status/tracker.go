// internal/status/tracker.go
package status

// Tracker owns the bridge snapshot. Each transition returns the new
// snapshot and whether anything changed, so the caller writes only deltas.
// Single goroutine use.
type Tracker struct {
	snap Snapshot
}

func NewTracker() *Tracker {
	return &Tracker{snap: Snapshot{Health: HealthUnknown}}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Streaming marks recovery / OK and resets error state.
func (t *Tracker) Streaming() (Snapshot, bool) {
	changed := false

	if t.snap.Health != HealthOK {
		t.snap.Health = HealthOK
		changed = true
	}
	// Reset last error code when healthy.
	if t.snap.LastErrorCode != 0 {
		t.snap.LastErrorCode = 0
		changed = true
	}
	// Reset seconds-in-error on recovery.
	if t.snap.SecondsInError != 0 {
		t.snap.SecondsInError = 0
		changed = true
	}
	return t.snap, changed
}

// Failed records a terminal session error.
// NOTE: seconds_in_error increments on Tick only.
func (t *Tracker) Failed(code uint16) (Snapshot, bool) {
	changed := false

	if t.snap.Health != HealthError {
		t.snap.Health = HealthError
		changed = true
	}
	if t.snap.LastErrorCode != code {
		t.snap.LastErrorCode = code
		changed = true
	}
	return t.snap, changed
}

// Stopped marks a requested shutdown.
func (t *Tracker) Stopped() (Snapshot, bool) {
	if t.snap.Health == HealthDisabled {
		return t.snap, false
	}
	t.snap.Health = HealthDisabled
	return t.snap, true
}

// Restarted counts one caller-level restart.
func (t *Tracker) Restarted() (Snapshot, bool) {
	if t.snap.Restarts == 0xFFFF {
		return t.snap, false
	}
	t.snap.Restarts++
	return t.snap, true
}

// Tick advances seconds-in-error at 1 Hz while in error. Never wraps.
func (t *Tracker) Tick() (Snapshot, bool) {
	if t.snap.Health != HealthError || t.snap.SecondsInError == 0xFFFF {
		return t.snap, false
	}
	t.snap.SecondsInError++
	return t.snap, true
}
