package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/cwbudde/difftune/internal/de"
	"github.com/cwbudde/difftune/internal/report"
	"github.com/cwbudde/difftune/internal/sim"
	"github.com/cwbudde/difftune/internal/stocbias"
	"github.com/cwbudde/difftune/internal/store"
)

// runJob executes a tuning job in the background. If checkpointStore is not
// nil, the per-generation trace is written alongside periodic checkpoints
// (when the job's checkpointInterval is positive) and a final one.
//
// The engine itself has no cancellation points; the context is only honored
// before the run starts and after it finishes.
func runJob(ctx context.Context, jm *JobManager, checkpointStore *store.FSStore, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "problem", job.Config.Problem)

	problem, err := sim.Lookup(job.Config.Problem, job.Config.Dims, job.Config.Seed)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}

	// Check for cancellation before starting the expensive run
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	var trace *store.TraceWriter
	if checkpointStore != nil {
		trace, err = store.NewTraceWriter(checkpointStore.BaseDir(), jobID, false)
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to open trace: %w", err))
			return err
		}
		defer trace.Close()
	}

	bias := stocbias.New()
	objective := func(params []float64, minTrades int) float64 {
		v := problem.Score(params, minTrades)
		bias.Record(v)
		return v
	}

	cfg := de.Config{
		NVars:     problem.NVars,
		NInts:     problem.NInts,
		PopSize:   job.Config.PopSize,
		OverInit:  job.Config.OverInit,
		MinTrades: job.Config.MinTrades,
		MaxEvals:  job.Config.MaxEvals,
		MaxBadGen: job.Config.MaxBadGen,
		MutateDev: job.Config.MutateDev,
		PCross:    job.Config.PCross,
		PClimb:    job.Config.PClimb,
		Low:       problem.Low,
		High:      problem.High,
		Rand:      rand.New(rand.NewSource(job.Config.Seed)),
		Collector: bias,
		Reporter:  &report.CorrelationReporter{Logger: slog.Default()},
		OnGeneration: func(g de.GenStats) {
			jm.UpdateJob(jobID, func(j *Job) {
				j.Generations = g.Generation
				j.BestScore = g.Best
				j.BestParams = g.BestParams
				j.Evals = g.Evals
			})
			if trace != nil {
				trace.Write(store.TraceEntry{
					Generation: g.Generation,
					Best:       g.Best,
					Worst:      g.Worst,
					Avg:        g.Avg,
					Evals:      g.Evals,
					Timestamp:  time.Now(),
				})
			}
		},
	}

	start := time.Now()

	// Progress broadcasting runs beside the synchronous optimization.
	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	checkpointDone := make(chan struct{})
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, checkpointStore, jobID, checkpointDone)
	} else {
		close(checkpointDone)
	}

	result, runErr := de.Run(cfg, objective)

	close(progressDone)
	if checkpointStore != nil && job.Config.CheckpointInterval > 0 {
		close(checkpointDone)
	}
	elapsed := time.Since(start)

	if runErr != nil && !errors.Is(runErr, de.ErrReportFailed) {
		markJobFailed(jm, jobID, runErr)
		return runErr
	}
	if runErr != nil {
		// The report is advisory; the result stands.
		slog.Warn("Post-run report failed", "job_id", jobID, "error", runErr)
	}

	// Check for cancellation after optimization
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.BestParams = result.Params
		j.BestScore = result.Score
		j.Generations = result.Generations
		j.Evals = result.Evals
		j.CapExceeded = result.CapExceeded
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	if trace != nil {
		if err := trace.Flush(); err != nil {
			slog.Warn("Failed to flush trace", "job_id", jobID, "error", err)
		}
	}

	if checkpointStore != nil {
		checkpoint := store.NewCheckpoint(jobID, result.Params, result.Score,
			result.Generations, result.Evals, result.FinalPop, job.Config)
		if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
	}

	eps := float64(result.Evals) / elapsed.Seconds()
	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"best_score", result.Score,
		"generations", result.Generations,
		"evals", result.Evals,
		"evals_per_second", eps,
		"init_draws", bias.Count(),
		"init_selection_bias", bias.Bias(),
	)

	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:       jobID,
		State:       StateCompleted,
		Generations: result.Generations,
		BestScore:   result.Score,
		EPS:         eps,
		Timestamp:   time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events during optimization
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()
			var eps float64
			if elapsed > 0 {
				eps = float64(job.Evals) / elapsed
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:       jobID,
				State:       job.State,
				Generations: job.Generations,
				BestScore:   job.BestScore,
				EPS:         eps,
				Timestamp:   time.Now(),
			})
		}
	}
}

// monitorCheckpoints periodically saves checkpoints during optimization
func monitorCheckpoints(ctx context.Context, jm *JobManager, checkpointStore *store.FSStore, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, checkpointStore, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint saves a mid-run checkpoint from the job's current state.
// The population is only known at the end of the run, so interim
// checkpoints carry the best candidate and counters only.
func saveCheckpoint(jm *JobManager, checkpointStore *store.FSStore, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if job.Generations == 0 {
		slog.Debug("Skipping checkpoint, no completed generation yet", "job_id", jobID)
		return nil
	}

	checkpoint := store.NewCheckpoint(jobID, job.BestParams, job.BestScore,
		job.Generations, job.Evals, nil, job.Config)
	if err := checkpointStore.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"generation", job.Generations,
		"best_score", job.BestScore,
	)
	return nil
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}
