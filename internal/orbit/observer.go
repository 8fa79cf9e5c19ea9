package orbit

import (
	"time"

	"github.com/banshee-data/stagemode/internal/spatial"
)

// Phase labels where in the interaction lifecycle a trace sample was taken.
type Phase string

const (
	PhaseBegin  Phase = "begin"
	PhaseUpdate Phase = "update"
	PhaseEnd    Phase = "end"
	PhaseDecay  Phase = "decay"
)

// TraceSample is one instrumented observation of the driver. Begin/update/
// end samples carry the manipulation pose and the deltas computed from it;
// decay samples carry the remaining yaw velocity in YawRate.
type TraceSample struct {
	SessionID  string
	Seq        int64
	Time       time.Time
	Phase      Phase
	Pose       spatial.Pose
	YawDelta   float64
	PitchDelta float64
	YawRate    float64
	PitchRate  float64
}

// Observer receives driver instrumentation. Implementations must be cheap:
// callbacks run synchronously on the interaction context. The trace store's
// Recorder implements this to persist sessions for offline replay.
type Observer interface {
	// Transition fires after every state change.
	Transition(sessionID string, from, to DriverState)

	// Sample fires once per begin/update/end call and once per decay tick.
	Sample(s TraceSample)
}
