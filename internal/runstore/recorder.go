package runstore

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/airway-data/ventscan/internal/feature"
	"github.com/airway-data/ventscan/internal/timeutil"
)

// RunRecorder coordinates extraction run lifecycle persistence: start, then
// either complete with a feature table or fail with an error message. It is
// safe for concurrent use.
type RunRecorder struct {
	mu         sync.Mutex
	store      *Store
	clock      timeutil.Clock
	currentRun *Run
	startTime  time.Time
}

// NewRunRecorder creates a recorder over the given store.
func NewRunRecorder(store *Store) *RunRecorder {
	return &RunRecorder{store: store, clock: timeutil.RealClock{}}
}

// NewRunRecorderWithClock creates a recorder with an injected clock.
func NewRunRecorderWithClock(store *Store, clock timeutil.Clock) *RunRecorder {
	return &RunRecorder{store: store, clock: clock}
}

// StartRun begins a new extraction run and returns its id.
func (r *RunRecorder) StartRun(mode, manifestPath, configJSON string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runID := uuid.New().String()
	now := r.clock.Now()
	run := &Run{
		RunID:        runID,
		CreatedUnix:  now.Unix(),
		Mode:         mode,
		ManifestPath: manifestPath,
		ConfigJSON:   configJSON,
		Status:       StatusRunning,
	}
	if err := r.store.InsertRun(run); err != nil {
		return "", err
	}

	r.currentRun = run
	r.startTime = now

	log.Printf("[RunRecorder] Started %s run %s for %s", mode, runID, manifestPath)
	return runID, nil
}

// CompleteRun persists the run's feature table and marks it completed.
func (r *RunRecorder) CompleteRun(tbl *feature.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentRun == nil {
		return nil
	}

	runID := r.currentRun.RunID
	if err := r.store.SaveFeatureTable(runID, tbl); err != nil {
		return err
	}

	elapsed := r.clock.Since(r.startTime)
	err := r.store.CompleteRun(runID, tbl.NumRows(), tbl.NumCols(), elapsed.Milliseconds(), r.clock.Now().Unix())
	if err != nil {
		return err
	}

	log.Printf("[RunRecorder] Completed run %s: %d samples, %d features in %.2fs",
		runID, tbl.NumRows(), tbl.NumCols(), elapsed.Seconds())

	r.currentRun = nil
	return nil
}

// FailRun marks the current run as failed with an error message.
func (r *RunRecorder) FailRun(errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.currentRun == nil {
		return nil
	}

	if err := r.store.UpdateRunStatus(r.currentRun.RunID, StatusFailed, errMsg); err != nil {
		return err
	}

	log.Printf("[RunRecorder] Failed run %s: %s", r.currentRun.RunID, errMsg)
	r.currentRun = nil
	return nil
}

// IsRunActive returns true if there's an active extraction run.
func (r *RunRecorder) IsRunActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentRun != nil
}

// CurrentRunID returns the current run ID, or empty string if no run is active.
func (r *RunRecorder) CurrentRunID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.currentRun == nil {
		return ""
	}
	return r.currentRun.RunID
}
