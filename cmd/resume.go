package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/difftune/internal/de"
	"github.com/cwbudde/difftune/internal/report"
	"github.com/cwbudde/difftune/internal/sim"
	"github.com/cwbudde/difftune/internal/stocbias"
	"github.com/cwbudde/difftune/internal/store"
)

var (
	resumeDataDir string
	resumeSeed    int64
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a tuning job from its checkpoint",
	Long: `Loads a checkpoint and runs another tuning pass with the same
configuration. The search itself restarts (generator state is not saved),
but the checkpointed best candidate is carried over, so the recorded best
score never gets worse. The trace is appended to.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data", "./data", "Data directory holding the checkpoint")
	resumeCmd.Flags().Int64Var(&resumeSeed, "seed", -1, "Random seed for the new pass (-1 = previous seed + 1)")
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("invalid checkpoint: %w", err)
	}

	config := checkpoint.Config
	newSeed := resumeSeed
	if newSeed < 0 {
		newSeed = config.Seed + 1
	}

	problem, err := sim.Lookup(config.Problem, config.Dims, config.Seed)
	if err != nil {
		return err
	}
	if len(checkpoint.BestParams) != problem.NVars {
		return fmt.Errorf("checkpoint has %d parameters, problem %q has %d",
			len(checkpoint.BestParams), problem.Name, problem.NVars)
	}

	slog.Info("Resuming tuning",
		"job_id", jobID,
		"problem", problem.Name,
		"checkpoint_score", checkpoint.BestScore,
		"checkpoint_generations", checkpoint.Generations,
		"seed", newSeed,
	)

	trace, err := store.NewTraceWriter(resumeDataDir, jobID, true)
	if err != nil {
		return fmt.Errorf("failed to open trace: %w", err)
	}
	defer trace.Close()

	bias := stocbias.New()
	objective := func(params []float64, mt int) float64 {
		v := problem.Score(params, mt)
		bias.Record(v)
		return v
	}

	genOffset := checkpoint.Generations

	cfg := de.Config{
		NVars:     problem.NVars,
		NInts:     problem.NInts,
		PopSize:   config.PopSize,
		OverInit:  config.OverInit,
		MinTrades: config.MinTrades,
		MaxEvals:  config.MaxEvals,
		MaxBadGen: config.MaxBadGen,
		MutateDev: config.MutateDev,
		PCross:    config.PCross,
		PClimb:    config.PClimb,
		Low:       problem.Low,
		High:      problem.High,
		Rand:      rand.New(rand.NewSource(newSeed)),
		Collector: bias,
		Reporter:  &report.CorrelationReporter{Logger: slog.Default()},
		Logger:    slog.Default(),
		OnGeneration: func(g de.GenStats) {
			trace.Write(store.TraceEntry{
				Generation: genOffset + g.Generation,
				Best:       g.Best,
				Worst:      g.Worst,
				Avg:        g.Avg,
				Evals:      g.Evals,
				Timestamp:  time.Now(),
			})
		},
	}

	result, err := de.Run(cfg, objective)
	if err != nil && !errors.Is(err, de.ErrReportFailed) {
		return err
	}
	if err != nil {
		slog.Warn("Post-run report failed", "error", err)
	}

	// Carry the checkpointed best over if the new pass did not beat it.
	bestParams := result.Params
	bestScore := result.Score
	if checkpoint.BestScore > bestScore {
		bestParams = checkpoint.BestParams
		bestScore = checkpoint.BestScore
		slog.Info("New pass did not improve on checkpoint", "checkpoint_score", checkpoint.BestScore, "pass_score", result.Score)
	}

	config.Seed = newSeed
	updated := store.NewCheckpoint(jobID, bestParams, bestScore,
		genOffset+result.Generations, checkpoint.Evals+result.Evals,
		result.FinalPop, config)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	printResult(problem, bestParams, bestScore, updated.Generations, updated.Evals, result.CapExceeded)
	return nil
}
