package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pillars/internal/batch"
	"pillars/internal/storage"
	"pillars/internal/symbol"
)

var (
	jobType       string
	resetStatuses []string
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue <charts.json>",
	Short: "Queue a JSON array of charts for batch analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		var payloads []json.RawMessage
		if err := json.Unmarshal(data, &payloads); err != nil {
			return fmt.Errorf("%s must hold a JSON array of charts: %w", args[0], err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ids, err := store.Enqueue(cmd.Context(), resolveJobType(), payloads)
		if err != nil {
			return fmt.Errorf("failed to enqueue: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "📥 Enqueued %d charts as %q\n", len(ids), resolveJobType())
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyse every pending chart in the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runner := batch.NewRunner(store, symbol.Default(), newAnalyzer(),
			batch.WithWorkers(cfg.Batch.Workers),
			batch.WithBatchSize(cfg.Batch.BatchSize),
			batch.WithLogger(logger))

		start := time.Now()
		stats, err := runner.Run(cmd.Context(), resolveJobType())
		logger.Info("Batch run finished",
			zap.Int("processed", stats.Processed),
			zap.Int("failed", stats.Failed),
			zap.Duration("elapsed", time.Since(start)))
		if err != nil {
			return fmt.Errorf("batch run stopped: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Processed %d charts: %d finished, %d failed\n", stats.Processed, stats.Finished, stats.Failed)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Move finished or failed jobs back to pending",
	RunE: func(cmd *cobra.Command, args []string) error {
		statuses := make([]storage.JobStatus, 0, len(resetStatuses))
		for _, s := range resetStatuses {
			st := storage.JobStatus(s)
			if st != storage.StatusFinished && st != storage.StatusFailed {
				return fmt.Errorf("cannot reset jobs in status %q", s)
			}
			statuses = append(statuses, st)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Reset(cmd.Context(), resolveJobType(), statuses...)
		if err != nil {
			return fmt.Errorf("failed to reset jobs: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔄 Reset %d jobs to pending\n", n)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue counts per status",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.Counts(cmd.Context(), resolveJobType())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Job type: %s\n", resolveJobType())
		for _, st := range []storage.JobStatus{storage.StatusPending, storage.StatusFinished, storage.StatusFailed} {
			fmt.Fprintf(out, "  %-9s %d\n", st, counts[st])
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{enqueueCmd, runCmd, resetCmd, statusCmd} {
		cmd.Flags().StringVarP(&jobType, "job-type", "t", "", "Job type to operate on (default from batch.job_type)")
	}
	resetCmd.Flags().StringSliceVar(&resetStatuses, "status", nil, "Statuses to reset: finished, failed (default both)")
}

func resolveJobType() string {
	if jobType != "" {
		return jobType
	}
	return cfg.Batch.JobType
}
