package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/difftune/internal/report"
	"github.com/cwbudde/difftune/internal/store"
)

var (
	reportDataDir string
	reportChart   string
)

var reportCmd = &cobra.Command{
	Use:   "report [job-id]",
	Short: "Report on a finished tuning job",
	Long: `Prints the checkpointed result and the parameter correlation matrix of
the final population, and optionally renders the convergence chart from the
job's trace to an HTML file.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportDataDir, "data", "./data", "Data directory holding the checkpoint")
	reportCmd.Flags().StringVar(&reportChart, "chart", "", "Write convergence chart HTML to this path")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(reportDataDir)
	if err != nil {
		return fmt.Errorf("failed to open data dir: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	fmt.Printf("Job: %s\n", checkpoint.JobID)
	fmt.Printf("Problem: %s\n", checkpoint.Config.Problem)
	fmt.Printf("Best score: %.6g\n", checkpoint.BestScore)
	fmt.Printf("Generations: %d, evaluations: %d\n", checkpoint.Generations, checkpoint.Evals)
	fmt.Printf("Parameters: %v\n", checkpoint.BestParams)

	if len(checkpoint.Population) > 0 {
		corr, err := report.Correlations(checkpoint.Population, len(checkpoint.BestParams))
		if err != nil {
			return fmt.Errorf("failed to compute correlations: %w", err)
		}
		fmt.Println("\nParameter correlations of the final population:")
		fmt.Print(report.FormatMatrix(corr))
	}

	if reportChart != "" {
		reader, err := store.NewTraceReader(reportDataDir, jobID)
		if err != nil {
			return fmt.Errorf("failed to open trace: %w", err)
		}
		defer reader.Close()

		entries, err := reader.ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read trace: %w", err)
		}
		if len(entries) == 0 {
			return fmt.Errorf("trace for job %s is empty", jobID)
		}

		title := fmt.Sprintf("Convergence %s", checkpoint.Config.Problem)
		if err := report.WriteConvergenceChart(reportChart, entries, title); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		fmt.Printf("\nChart: %s\n", reportChart)
	}

	return nil
}
