package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTraceWriter_WriteAndRead(t *testing.T) {
	// Create temp directory
	tmpDir := t.TempDir()

	jobID := "test-job-123"

	// Create trace writer
	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	// Write some entries
	entries := []TraceEntry{
		{Generation: 1, Best: 1.2, Worst: -0.4, Avg: 0.3, Evals: 30, Timestamp: time.Now()},
		{Generation: 2, Best: 1.5, Worst: 0.1, Avg: 0.7, Evals: 62, Timestamp: time.Now()},
		{Generation: 3, Best: 1.5, Worst: 0.4, Avg: 0.9, Evals: 94, Timestamp: time.Now()},
		{Generation: 4, Best: 1.8, Worst: 0.6, Avg: 1.1, Evals: 127, Timestamp: time.Now()},
	}

	for _, entry := range entries {
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}

	// Close writer
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	// Verify file exists
	tracePath := filepath.Join(tmpDir, "jobs", jobID, "trace.jsonl")
	if _, err := os.Stat(tracePath); os.IsNotExist(err) {
		t.Fatalf("Trace file not created: %s", tracePath)
	}

	// Read entries back
	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	readEntries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}

	// Verify count
	if len(readEntries) != len(entries) {
		t.Fatalf("Expected %d entries, got %d", len(entries), len(readEntries))
	}

	// Verify data
	for i, entry := range readEntries {
		if entry.Generation != entries[i].Generation {
			t.Errorf("Entry %d: expected generation %d, got %d", i, entries[i].Generation, entry.Generation)
		}
		if entry.Best != entries[i].Best {
			t.Errorf("Entry %d: expected best %f, got %f", i, entries[i].Best, entry.Best)
		}
		if entry.Evals != entries[i].Evals {
			t.Errorf("Entry %d: expected evals %d, got %d", i, entries[i].Evals, entry.Evals)
		}
	}
}

func TestTraceWriter_Append(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-append"

	// Write initial entries
	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	if err := writer.Write(TraceEntry{Generation: 1, Best: 1.0, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	// Append more entries
	writer, err = NewTraceWriter(tmpDir, jobID, true)
	if err != nil {
		t.Fatalf("Failed to create trace writer in append mode: %v", err)
	}

	if err := writer.Write(TraceEntry{Generation: 2, Best: 1.4, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	// Read all entries
	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}

	// Should have both entries
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].Generation != 1 {
		t.Errorf("First entry: expected generation 1, got %d", entries[0].Generation)
	}
	if entries[1].Generation != 2 {
		t.Errorf("Second entry: expected generation 2, got %d", entries[1].Generation)
	}
}

func TestTraceWriter_Flush(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-flush"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	defer writer.Close()

	// Write entry
	if err := writer.Write(TraceEntry{Generation: 1, Best: 1.0, Timestamp: time.Now()}); err != nil {
		t.Fatalf("Failed to write entry: %v", err)
	}

	// Flush
	if err := writer.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}

	// Data should be on disk now (even without closing)
	tracePath := filepath.Join(tmpDir, "jobs", jobID, "trace.jsonl")
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatalf("Failed to read trace file: %v", err)
	}
	if len(data) == 0 {
		t.Error("Trace file is empty after flush")
	}
}

func TestTraceReader_ReadIteratively(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-iter"

	// Write entries
	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}

	for i := 1; i <= 5; i++ {
		entry := TraceEntry{
			Generation: i,
			Best:       float64(i) * 0.5,
			Evals:      i * 30,
			Timestamp:  time.Now(),
		}
		if err := writer.Write(entry); err != nil {
			t.Fatalf("Failed to write entry: %v", err)
		}
	}
	writer.Close()

	// Read iteratively
	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	count := 0
	for {
		entry, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read entry: %v", err)
		}

		if entry.Generation != count+1 {
			t.Errorf("Entry %d: expected generation %d, got %d", count, count+1, entry.Generation)
		}

		count++
	}

	if count != 5 {
		t.Errorf("Expected to read 5 entries, got %d", count)
	}
}

func TestTraceReader_NotFound(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "nonexistent-job"

	_, err := NewTraceReader(tmpDir, jobID)
	if err == nil {
		t.Fatal("Expected error for nonexistent trace file")
	}

	// Should be NotFoundError
	if !isNotFound(err) {
		t.Errorf("Expected NotFoundError, got: %v", err)
	}
}

func TestTraceWriter_Path(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-path"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	defer writer.Close()

	expected := filepath.Join(tmpDir, "jobs", jobID, "trace.jsonl")
	if writer.Path() != expected {
		t.Errorf("Expected path %s, got %s", expected, writer.Path())
	}
}

func TestTraceWriter_ConcurrentWrites(t *testing.T) {
	tmpDir := t.TempDir()
	jobID := "test-job-concurrent"

	writer, err := NewTraceWriter(tmpDir, jobID, false)
	if err != nil {
		t.Fatalf("Failed to create trace writer: %v", err)
	}
	defer writer.Close()

	// Write from multiple goroutines
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(gen int) {
			entry := TraceEntry{
				Generation: gen,
				Best:       float64(gen),
				Timestamp:  time.Now(),
			}
			if err := writer.Write(entry); err != nil {
				t.Errorf("Concurrent write failed: %v", err)
			}
			done <- true
		}(i)
	}

	// Wait for all writes
	for i := 0; i < 10; i++ {
		<-done
	}

	writer.Flush()

	// Read back and verify we got 10 entries
	reader, err := NewTraceReader(tmpDir, jobID)
	if err != nil {
		t.Fatalf("Failed to create trace reader: %v", err)
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("Failed to read entries: %v", err)
	}

	if len(entries) != 10 {
		t.Errorf("Expected 10 entries, got %d", len(entries))
	}
}
