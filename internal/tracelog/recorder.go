package tracelog

import (
	"github.com/banshee-data/stagemode/internal/monitoring"
	"github.com/banshee-data/stagemode/internal/orbit"
	"github.com/banshee-data/stagemode/internal/timeutil"
)

// Recorder persists driver instrumentation to a Store. It implements
// orbit.Observer; install it with Driver.SetObserver. Storage errors are
// logged rather than surfaced because observer callbacks have no error
// channel and must not disturb the interaction.
type Recorder struct {
	store *Store
	clock timeutil.Clock
	op    orbit.Operation
}

// NewRecorder creates a recorder tagging new sessions with the given
// operation.
func NewRecorder(store *Store, op orbit.Operation) *Recorder {
	return &Recorder{store: store, clock: timeutil.RealClock{}, op: op}
}

// SetClock replaces the session timestamp source; tests use a ManualClock.
func (r *Recorder) SetClock(c timeutil.Clock) {
	if c != nil {
		r.clock = c
	}
}

// Transition opens a session row when a gesture begins and closes it when the
// driver returns to idle. A session interrupted by a new Begin keeps a null
// end timestamp.
func (r *Recorder) Transition(sessionID string, from, to orbit.DriverState) {
	switch to {
	case orbit.StateInteracting:
		if err := r.store.BeginSession(sessionID, r.clock.Now(), r.op); err != nil {
			monitoring.Logf("tracelog: %v", err)
		}
	case orbit.StateIdle:
		if sessionID == "" {
			return
		}
		if err := r.store.EndSession(sessionID, r.clock.Now()); err != nil {
			monitoring.Logf("tracelog: %v", err)
		}
	}
}

// Sample persists one trace sample.
func (r *Recorder) Sample(s orbit.TraceSample) {
	if err := r.store.InsertSample(s); err != nil {
		monitoring.Logf("tracelog: %v", err)
	}
}
