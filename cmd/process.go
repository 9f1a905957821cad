package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/grovetools/dialognorm/config"
	"github.com/grovetools/dialognorm/internal/display"
	"github.com/grovetools/dialognorm/internal/pipeline"
	"github.com/grovetools/dialognorm/internal/source"
)

func newProcessCmd() *cobra.Command {
	var students []int
	var weeks []int
	var force bool
	var dryRun bool
	var workers int

	cmd := &cobra.Command{
		Use:   "process [flags]",
		Short: "Normalize raw session documents into dialogue artifacts",
		Long: "Discover raw session documents, segment them into speaker turns, " +
			"split them into tasks, and write one dialogue artifact per (student, week, task)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			scanner := source.NewScanner(cfg)
			docs, err := scanner.Scan()
			if err != nil {
				return fmt.Errorf("failed to scan for documents: %w", err)
			}
			docs = source.Filter(docs, students, weeks)
			if len(docs) == 0 {
				fmt.Println("No matching documents found.")
				return nil
			}

			runner := pipeline.NewRunner(cfg, &source.FileExtractor{ExtractedDir: cfg.ExtractedDir})
			report := runner.Run(cmd.Context(), docs, pipeline.Options{
				Force:   force,
				DryRun:  dryRun,
				Workers: workers,
			})

			display.PrintRunReport(report, os.Stdout)
			if report.HasErrors() {
				return fmt.Errorf("%d document(s) failed", len(report.Errors))
			}
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&students, "student", nil, "Student ID(s) to process (default: all)")
	cmd.Flags().IntSliceVar(&weeks, "week", nil, "Week number(s) to process (default: all)")
	cmd.Flags().BoolVar(&force, "force", false, "Reprocess documents even if artifacts are up to date")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log actions without writing artifacts")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent document workers (default: from config)")

	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
