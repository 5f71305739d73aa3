package store

import (
	"fmt"
	"time"
)

// TuneConfig holds the configuration of a tuning job (checkpoint copy).
// This avoids import cycles with the server package.
type TuneConfig struct {
	Problem string `json:"problem"` // sphere, eggholder, macross
	Dims    int    `json:"dims,omitempty"`

	PopSize   int `json:"popSize"`
	OverInit  int `json:"overInit"`
	MinTrades int `json:"minTrades"`
	MaxEvals  int `json:"maxEvals"`
	MaxBadGen int `json:"maxBadGen"`

	MutateDev float64 `json:"mutateDev"`
	PCross    float64 `json:"pcross"`
	PClimb    float64 `json:"pclimb"`

	Seed int64 `json:"seed"`

	CheckpointInterval int `json:"checkpointInterval,omitempty"` // seconds between checkpoints (0 = disabled)
}

// Checkpoint represents a saved tuning state. All fields serialize to JSON.
//
// The checkpoint saves the best candidate found so far plus the final (or
// latest) population, but not the generator state of the random source, so a
// resumed run diverges from an uninterrupted one. The best score never gets
// worse across a resume because the best candidate itself is carried over.
type Checkpoint struct {
	// JobID is the unique identifier of the tuning job.
	JobID string `json:"jobId"`

	// BestParams is the best parameter vector found so far.
	BestParams []float64 `json:"bestParams"`

	// BestScore is the criterion value achieved by BestParams.
	BestScore float64 `json:"bestScore"`

	// Generations completed when this checkpoint was created.
	Generations int `json:"generations"`

	// Evals is the total number of criterion evaluations so far.
	Evals int `json:"evals"`

	// Population is the latest population, each row the parameters followed
	// by the score. Optional; used by the correlation report.
	Population [][]float64 `json:"population,omitempty"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation on resume.
	Config TuneConfig `json:"config"`
}

// CheckpointInfo is checkpoint metadata without the parameter payload, for
// efficient listing.
type CheckpointInfo struct {
	JobID       string    `json:"jobId"`
	BestScore   float64   `json:"bestScore"`
	Generations int       `json:"generations"`
	Evals       int       `json:"evals"`
	Timestamp   time.Time `json:"timestamp"`
	Problem     string    `json:"problem"`
	PopSize     int       `json:"popSize"`
}

// NewCheckpoint creates a checkpoint from runtime job state.
func NewCheckpoint(jobID string, bestParams []float64, bestScore float64, generations, evals int, population [][]float64, config TuneConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		BestParams:  bestParams,
		BestScore:   bestScore,
		Generations: generations,
		Evals:       evals,
		Population:  population,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to its metadata.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:       c.JobID,
		BestScore:   c.BestScore,
		Generations: c.Generations,
		Evals:       c.Evals,
		Timestamp:   c.Timestamp,
		Problem:     c.Config.Problem,
		PopSize:     c.Config.PopSize,
	}
}

// Validate checks that the checkpoint has usable data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.BestParams) == 0 {
		return &ValidationError{Field: "BestParams", Reason: "cannot be empty"}
	}
	if c.Generations < 0 {
		return &ValidationError{Field: "Generations", Reason: "cannot be negative"}
	}
	if c.Evals < 0 {
		return &ValidationError{Field: "Evals", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Problem == "" {
		return &ValidationError{Field: "Config.Problem", Reason: "cannot be empty"}
	}
	if c.Config.PopSize < 4 {
		return &ValidationError{Field: "Config.PopSize", Reason: "must be at least 4"}
	}
	for i, row := range c.Population {
		if len(row) != len(c.BestParams)+1 {
			return &ValidationError{
				Field:  "Population",
				Reason: fmt.Sprintf("row %d has %d columns, want %d (params plus score)", i, len(row), len(c.BestParams)+1),
			}
		}
	}
	return nil
}

// IsCompatible checks whether this checkpoint can seed a run with the given
// config: same problem and the same search space shape.
func (c *Checkpoint) IsCompatible(config TuneConfig) error {
	if c.Config.Problem != config.Problem {
		return &CompatibilityError{Field: "Problem", Expected: c.Config.Problem, Actual: config.Problem}
	}
	if c.Config.Dims != config.Dims {
		return &CompatibilityError{
			Field:    "Dims",
			Expected: fmt.Sprintf("%d", c.Config.Dims),
			Actual:   fmt.Sprintf("%d", config.Dims),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
