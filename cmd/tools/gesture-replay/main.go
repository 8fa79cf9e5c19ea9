// gesture-replay runs a recorded or synthetic gesture through a fresh orbit
// driver on a deterministic scheduler and writes diagnostic plots plus a JSON
// summary of the post-release decay behavior.
//
// Replay a recorded session:
//
//	gesture-replay -db trace.db -session <id> -out replay-out
//
// Or generate a synthetic straight drag:
//
//	gesture-replay -frames 30 -dx 120 -dy 40 -out replay-out
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/stagemode/internal/monitoring"
	"github.com/banshee-data/stagemode/internal/orbit"
	"github.com/banshee-data/stagemode/internal/scene"
	"github.com/banshee-data/stagemode/internal/timeutil"
	"github.com/banshee-data/stagemode/internal/tracelog"
)

// maxSettleTicks bounds the post-release loop so a misconfigured decay factor
// cannot hang the tool.
const maxSettleTicks = 100000

func main() {
	dbPath := flag.String("db", "", "Trace database to replay from (empty for a synthetic gesture)")
	sessionID := flag.String("session", "", "Session ID to replay (default: most recent)")
	outDir := flag.String("out", "replay-out", "Output directory for plots")
	tuningPath := flag.String("tuning", "", "Optional tuning overlay JSON")
	frames := flag.Int("frames", 30, "Synthetic gesture: number of update frames")
	dx := flag.Float64("dx", 120, "Synthetic gesture: total horizontal drag in points")
	dy := flag.Float64("dy", 0, "Synthetic gesture: total vertical drag in points")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	monitoring.SetDebug(*verbose)

	if err := run(*dbPath, *sessionID, *outDir, *tuningPath, *frames, *dx, *dy); err != nil {
		fmt.Fprintf(os.Stderr, "gesture-replay: %v\n", err)
		os.Exit(1)
	}
}

func run(dbPath, sessionID, outDir, tuningPath string, frames int, dx, dy float64) error {
	cfg := orbit.DefaultConfig()
	if tuningPath != "" {
		tuning, err := orbit.LoadTuning(tuningPath)
		if err != nil {
			return err
		}
		cfg, err = tuning.Apply(cfg)
		if err != nil {
			return err
		}
	}

	var gesture []mgl64.Mat4
	label := "synthetic"
	if dbPath != "" {
		g, id, err := loadRecorded(dbPath, sessionID)
		if err != nil {
			return err
		}
		gesture, label = g, id
	} else {
		gesture = synthesizeDrag(frames, dx, dy)
	}
	if len(gesture) < 2 {
		return fmt.Errorf("gesture has %d frames, need at least begin and one update", len(gesture))
	}

	result, err := replay(gesture, cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := writeDecayPlot(filepath.Join(outDir, "decay.png"), result); err != nil {
		return err
	}
	if err := writeReport(filepath.Join(outDir, "report.html"), label, result); err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(summarize(label, result))
}

// loadRecorded rebuilds the gesture's input transforms from a stored session.
// Decay samples are skipped: decay is recomputed by the replay, which is the
// point of the tool.
func loadRecorded(dbPath, sessionID string) ([]mgl64.Mat4, string, error) {
	store, err := tracelog.Open(dbPath)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	if sessionID == "" {
		sessions, err := store.Sessions()
		if err != nil {
			return nil, "", err
		}
		if len(sessions) == 0 {
			return nil, "", fmt.Errorf("trace db has no sessions")
		}
		sessionID = sessions[0].ID
	}

	samples, err := store.Samples(sessionID)
	if err != nil {
		return nil, "", err
	}

	var gesture []mgl64.Mat4
	for _, s := range samples {
		switch s.Phase {
		case orbit.PhaseBegin, orbit.PhaseUpdate:
			gesture = append(gesture, s.Pose.Matrix())
		}
	}
	if len(gesture) == 0 {
		return nil, "", fmt.Errorf("session %s has no pose samples", sessionID)
	}
	return gesture, sessionID, nil
}

// synthesizeDrag produces a straight constant-velocity drag: one begin frame
// at the origin plus n update frames ending at (dx, dy).
func synthesizeDrag(n int, dx, dy float64) []mgl64.Mat4 {
	gesture := make([]mgl64.Mat4, 0, n+1)
	gesture = append(gesture, mgl64.Ident4())
	for i := 1; i <= n; i++ {
		f := float64(i) / float64(n)
		gesture = append(gesture, mgl64.Translate3D(dx*f, dy*f, 0))
	}
	return gesture
}

type replayResult struct {
	cfg orbit.Config

	updates    []orbit.TraceSample
	decayRates []float64
	totalTicks int
}

type captureObserver struct {
	updates []orbit.TraceSample
	decay   []float64
}

func (o *captureObserver) Transition(string, orbit.DriverState, orbit.DriverState) {}

func (o *captureObserver) Sample(s orbit.TraceSample) {
	if s.Phase == orbit.PhaseDecay {
		o.decay = append(o.decay, s.YawRate)
		return
	}
	o.updates = append(o.updates, s)
}

// replay drives the gesture through a fresh rig in lockstep with the
// reference tick, then keeps ticking until the driver settles back to idle.
func replay(gesture []mgl64.Mat4, cfg orbit.Config) (*replayResult, error) {
	graph := scene.NewMemoryGraph()
	rig, err := graph.NewRig()
	if err != nil {
		return nil, err
	}
	anim := scene.NewTweenAnimator(graph)
	sched := timeutil.NewManualScheduler()

	driver, err := orbit.NewDriver(graph, rig, anim, sched, cfg)
	if err != nil {
		return nil, err
	}
	driver.SetOperation(orbit.OperationOrbit)

	obs := &captureObserver{}
	driver.SetObserver(obs)

	if err := driver.Begin(gesture[0]); err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	for i, m := range gesture[1:] {
		if err := driver.Update(m); err != nil {
			return nil, fmt.Errorf("update frame %d: %w", i+1, err)
		}
	}
	if err := driver.End(); err != nil {
		return nil, fmt.Errorf("end: %w", err)
	}

	ticks := 0
	for driver.State() != orbit.StateIdle {
		if ticks >= maxSettleTicks {
			return nil, fmt.Errorf("driver did not settle within %d ticks", maxSettleTicks)
		}
		sched.Advance(cfg.ReferenceTick)
		anim.Step(cfg.ReferenceTick)
		ticks++
	}

	return &replayResult{
		cfg:        cfg,
		updates:    obs.updates,
		decayRates: obs.decay,
		totalTicks: ticks,
	}, nil
}

type summary struct {
	Session     string  `json:"session"`
	Frames      int     `json:"frames"`
	DecayTicks  int     `json:"decay_ticks"`
	SettleTicks int     `json:"settle_ticks"`
	MeanYawRate float64 `json:"mean_yaw_rate"`
	PeakYawRate float64 `json:"peak_yaw_rate"`
	P95YawRate  float64 `json:"p95_yaw_rate"`
}

func summarize(label string, r *replayResult) summary {
	s := summary{
		Session:     label,
		Frames:      len(r.updates),
		DecayTicks:  len(r.decayRates),
		SettleTicks: r.totalTicks,
	}

	rates := make([]float64, 0, len(r.decayRates))
	for _, v := range r.decayRates {
		rates = append(rates, math.Abs(v))
	}
	if len(rates) == 0 {
		return s
	}

	s.MeanYawRate = stat.Mean(rates, nil)
	sorted := append([]float64(nil), rates...)
	sort.Float64s(sorted)
	s.PeakYawRate = sorted[len(sorted)-1]
	s.P95YawRate = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	return s
}
