package server

import (
	"context"
	"errors"
	"testing"

	"github.com/cwbudde/difftune/internal/store"
)

func TestRunJob_Success(t *testing.T) {
	jm := NewJobManager()
	config := TuneConfig{
		Problem:   "sphere",
		Dims:      3,
		PopSize:   20,
		MinTrades: 1,
		MaxEvals:  100000,
		MaxBadGen: 20,
		MutateDev: 0.8,
		PCross:    0.9,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	ctx := context.Background()
	err := runJob(ctx, jm, nil, job.ID)

	if err != nil {
		t.Errorf("runJob should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCompleted {
		t.Errorf("Job should be completed, got %s", updated.State)
	}

	if updated.BestScore == 0 {
		t.Error("BestScore should be set")
	}

	if len(updated.BestParams) != 3 {
		t.Errorf("Expected 3 params, got %d", len(updated.BestParams))
	}

	if updated.Generations == 0 {
		t.Error("Generations should be set")
	}
	if updated.Evals == 0 {
		t.Error("Evals should be set")
	}
	if updated.EndTime == nil {
		t.Error("EndTime should be set")
	}
}

func TestRunJob_UnknownProblem(t *testing.T) {
	jm := NewJobManager()
	config := TuneConfig{
		Problem:   "nonexistent",
		PopSize:   20,
		MinTrades: 1,
		MaxEvals:  1000,
		MaxBadGen: 10,
		MutateDev: 0.8,
		PCross:    0.9,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	ctx := context.Background()
	err := runJob(ctx, jm, nil, job.ID)

	if err == nil {
		t.Error("runJob should fail with unknown problem")
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateFailed {
		t.Errorf("Job should be failed, got %s", updated.State)
	}

	if updated.Error == "" {
		t.Error("Error message should be set")
	}
}

func TestRunJob_PreCancelled(t *testing.T) {
	jm := NewJobManager()
	config := TuneConfig{
		Problem:   "sphere",
		Dims:      2,
		PopSize:   20,
		MinTrades: 1,
		MaxEvals:  100000,
		MaxBadGen: 20,
		MutateDev: 0.8,
		PCross:    0.9,
		Seed:      42,
	}

	job := jm.CreateJob(config)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runJob(ctx, jm, nil, job.ID)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("runJob should return context.Canceled, got %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateCancelled {
		t.Errorf("Job should be cancelled, got %s", updated.State)
	}
}

func TestRunJob_WritesCheckpointAndTrace(t *testing.T) {
	tmpDir := t.TempDir()
	fs, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	jm := NewJobManager()
	config := TuneConfig{
		Problem:   "sphere",
		Dims:      2,
		PopSize:   20,
		MinTrades: 1,
		MaxEvals:  100000,
		MaxBadGen: 10,
		MutateDev: 0.8,
		PCross:    0.9,
		Seed:      7,
	}

	job := jm.CreateJob(config)

	if err := runJob(context.Background(), jm, fs, job.ID); err != nil {
		t.Fatalf("runJob should succeed: %v", err)
	}

	checkpoint, err := fs.LoadCheckpoint(job.ID)
	if err != nil {
		t.Fatalf("Final checkpoint should exist: %v", err)
	}
	if len(checkpoint.BestParams) != 2 {
		t.Errorf("Expected 2 params in checkpoint, got %d", len(checkpoint.BestParams))
	}
	if len(checkpoint.Population) != config.PopSize {
		t.Errorf("Expected %d population rows, got %d", config.PopSize, len(checkpoint.Population))
	}

	reader, err := store.NewTraceReader(tmpDir, job.ID)
	if err != nil {
		t.Fatalf("Trace should exist: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Trace should be readable: %v", err)
	}
	updated, _ := jm.GetJob(job.ID)
	if len(entries) != updated.Generations {
		t.Errorf("Expected %d trace entries, got %d", updated.Generations, len(entries))
	}
	for i, e := range entries {
		if e.Generation != i+1 {
			t.Errorf("Entry %d has generation %d", i, e.Generation)
		}
		if e.Best < e.Avg {
			t.Errorf("Entry %d: best %g below average %g", i, e.Best, e.Avg)
		}
	}
}
