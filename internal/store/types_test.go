package store

import (
	"encoding/json"
	"testing"
	"time"
)

func validTuneConfig() TuneConfig {
	return TuneConfig{
		Problem:   "macross",
		PopSize:   30,
		OverInit:  30,
		MinTrades: 20,
		MaxEvals:  100000,
		MaxBadGen: 50,
		MutateDev: 0.8,
		PCross:    0.9,
		PClimb:    0.1,
		Seed:      42,
	}
}

func TestCheckpoint_JSONSerialization(t *testing.T) {
	original := &Checkpoint{
		JobID:       "test-job-123",
		BestParams:  []float64{12, 48, 0.0125},
		BestScore:   2.34,
		Generations: 120,
		Evals:       4100,
		Timestamp:   time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC),
		Population: [][]float64{
			{12, 48, 0.0125, 2.34},
			{14, 52, 0.0110, 2.10},
		},
		Config: validTuneConfig(),
	}

	// Serialize to JSON
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal checkpoint: %v", err)
	}

	// Verify JSON is not empty
	if len(data) == 0 {
		t.Fatal("Marshaled JSON is empty")
	}

	// Deserialize from JSON
	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal checkpoint: %v", err)
	}

	// Verify all fields match
	if restored.JobID != original.JobID {
		t.Errorf("JobID mismatch: expected %s, got %s", original.JobID, restored.JobID)
	}
	if restored.BestScore != original.BestScore {
		t.Errorf("BestScore mismatch: expected %f, got %f", original.BestScore, restored.BestScore)
	}
	if restored.Generations != original.Generations {
		t.Errorf("Generations mismatch: expected %d, got %d", original.Generations, restored.Generations)
	}
	if restored.Evals != original.Evals {
		t.Errorf("Evals mismatch: expected %d, got %d", original.Evals, restored.Evals)
	}
	if !restored.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp mismatch: expected %v, got %v", original.Timestamp, restored.Timestamp)
	}
	if len(restored.BestParams) != len(original.BestParams) {
		t.Fatalf("BestParams length mismatch: expected %d, got %d", len(original.BestParams), len(restored.BestParams))
	}
	for i := range original.BestParams {
		if restored.BestParams[i] != original.BestParams[i] {
			t.Errorf("BestParams[%d] mismatch: expected %f, got %f", i, original.BestParams[i], restored.BestParams[i])
		}
	}
	if len(restored.Population) != len(original.Population) {
		t.Errorf("Population length mismatch: expected %d, got %d", len(original.Population), len(restored.Population))
	}
	if restored.Config.Problem != original.Config.Problem {
		t.Errorf("Config.Problem mismatch: expected %s, got %s", original.Config.Problem, restored.Config.Problem)
	}
	if restored.Config.MinTrades != original.Config.MinTrades {
		t.Errorf("Config.MinTrades mismatch: expected %d, got %d", original.Config.MinTrades, restored.Config.MinTrades)
	}
}

func TestCheckpoint_JSONIndented(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test-job",
		BestParams:  []float64{1.0, 2.0, 3.0},
		BestScore:   1.5,
		Generations: 100,
		Evals:       3200,
		Timestamp:   time.Now(),
		Config:      validTuneConfig(),
	}

	// Serialize with indentation (like FSStore does)
	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal with indent: %v", err)
	}

	// Verify it's valid JSON and can be unmarshaled
	var restored Checkpoint
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Failed to unmarshal indented JSON: %v", err)
	}

	if restored.JobID != checkpoint.JobID {
		t.Errorf("JobID mismatch after indented serialization")
	}
}

func TestCheckpoint_Validate_Valid(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "valid-job",
		BestParams:  []float64{12, 48, 0.0125},
		BestScore:   2.34,
		Generations: 100,
		Evals:       3200,
		Timestamp:   time.Now(),
		Population: [][]float64{
			{12, 48, 0.0125, 2.34},
		},
		Config: validTuneConfig(),
	}

	err := checkpoint.Validate()
	if err != nil {
		t.Errorf("Valid checkpoint should not have validation error: %v", err)
	}
}

func TestCheckpoint_Validate_EmptyJobID(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "",
		BestParams:  []float64{1, 2, 3},
		BestScore:   1.0,
		Generations: 100,
		Timestamp:   time.Now(),
		Config:      validTuneConfig(),
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for empty JobID")
	}

	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected ValidationError, got %T", err)
	}
}

func TestCheckpoint_Validate_NilBestParams(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test",
		BestParams:  nil,
		BestScore:   1.0,
		Generations: 100,
		Timestamp:   time.Now(),
		Config:      validTuneConfig(),
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for nil BestParams")
	}
}

func TestCheckpoint_Validate_NegativeCounters(t *testing.T) {
	testCases := []struct {
		name        string
		generations int
		evals       int
	}{
		{"negative generations", -1, 100},
		{"negative evals", 100, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			checkpoint := &Checkpoint{
				JobID:       "test",
				BestParams:  []float64{1, 2, 3},
				BestScore:   1.0,
				Generations: tc.generations,
				Evals:       tc.evals,
				Timestamp:   time.Now(),
				Config:      validTuneConfig(),
			}

			err := checkpoint.Validate()
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCheckpoint_Validate_ZeroTimestamp(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test",
		BestParams:  []float64{1, 2, 3},
		BestScore:   1.0,
		Generations: 100,
		Timestamp:   time.Time{}, // Zero value
		Config:      validTuneConfig(),
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for zero timestamp")
	}
}

func TestCheckpoint_Validate_InvalidConfig(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*TuneConfig)
	}{
		{"empty problem", func(c *TuneConfig) { c.Problem = "" }},
		{"tiny population", func(c *TuneConfig) { c.PopSize = 3 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			config := validTuneConfig()
			tc.mutate(&config)

			checkpoint := &Checkpoint{
				JobID:       "test",
				BestParams:  []float64{1, 2, 3},
				BestScore:   1.0,
				Generations: 100,
				Timestamp:   time.Now(),
				Config:      config,
			}

			err := checkpoint.Validate()
			if err == nil {
				t.Fatalf("Expected validation error for %s", tc.name)
			}
		})
	}
}

func TestCheckpoint_Validate_BadPopulationRow(t *testing.T) {
	checkpoint := &Checkpoint{
		JobID:       "test",
		BestParams:  []float64{1, 2, 3},
		BestScore:   1.0,
		Generations: 100,
		Timestamp:   time.Now(),
		Population: [][]float64{
			{1, 2, 3, 0.5},
			{1, 2, 3}, // missing the score column
		},
		Config: validTuneConfig(),
	}

	err := checkpoint.Validate()
	if err == nil {
		t.Fatal("Expected validation error for malformed population row")
	}
}

func TestCheckpoint_IsCompatible_Compatible(t *testing.T) {
	checkpoint := &Checkpoint{Config: validTuneConfig()}

	err := checkpoint.IsCompatible(validTuneConfig())
	if err != nil {
		t.Errorf("Compatible configs should not return error: %v", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentProblem(t *testing.T) {
	checkpoint := &Checkpoint{Config: validTuneConfig()}

	config := validTuneConfig()
	config.Problem = "sphere"

	err := checkpoint.IsCompatible(config)
	if err == nil {
		t.Fatal("Expected compatibility error for different Problem")
	}

	if _, ok := err.(*CompatibilityError); !ok {
		t.Errorf("Expected CompatibilityError, got %T", err)
	}
}

func TestCheckpoint_IsCompatible_DifferentDims(t *testing.T) {
	checkpoint := &Checkpoint{Config: validTuneConfig()}

	config := validTuneConfig()
	config.Dims = 7

	err := checkpoint.IsCompatible(config)
	if err == nil {
		t.Fatal("Expected compatibility error for different Dims")
	}
}

func TestNewCheckpoint(t *testing.T) {
	jobID := "test-job"
	bestParams := []float64{12, 48, 0.0125}
	bestScore := 2.34
	generations := 120
	evals := 4100
	population := [][]float64{{12, 48, 0.0125, 2.34}}
	config := validTuneConfig()

	checkpoint := NewCheckpoint(jobID, bestParams, bestScore, generations, evals, population, config)

	if checkpoint.JobID != jobID {
		t.Errorf("JobID mismatch: expected %s, got %s", jobID, checkpoint.JobID)
	}
	if checkpoint.BestScore != bestScore {
		t.Errorf("BestScore mismatch: expected %f, got %f", bestScore, checkpoint.BestScore)
	}
	if checkpoint.Generations != generations {
		t.Errorf("Generations mismatch: expected %d, got %d", generations, checkpoint.Generations)
	}
	if checkpoint.Evals != evals {
		t.Errorf("Evals mismatch: expected %d, got %d", evals, checkpoint.Evals)
	}
	if checkpoint.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if len(checkpoint.BestParams) != len(bestParams) {
		t.Errorf("BestParams length mismatch")
	}
	if len(checkpoint.Population) != len(population) {
		t.Errorf("Population length mismatch")
	}
}
