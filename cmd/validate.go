package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grovetools/dialognorm/internal/dialogue"
	"github.com/grovetools/dialognorm/internal/transcript"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [flags]",
		Short: "Validate written dialogue artifacts",
		Long: "Re-open dialogue artifacts and verify filename/metadata consistency, " +
			"turn numbering, speaker values, and non-empty turn text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			paths, err := filepath.Glob(filepath.Join(cfg.ProcessedDir, "S*_W*_T*.json"))
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				fmt.Println("No artifacts found.")
				return nil
			}

			failures := 0
			for _, path := range paths {
				if issues := validateArtifact(path); len(issues) > 0 {
					failures++
					fmt.Printf("%s:\n", filepath.Base(path))
					for _, issue := range issues {
						fmt.Printf("  - %s\n", issue)
					}
				}
			}

			fmt.Printf("\nValidated %d artifact(s), %d with issues\n", len(paths), failures)
			if failures > 0 {
				return fmt.Errorf("%d artifact(s) failed validation", failures)
			}
			return nil
		},
	}
	return cmd
}

// validateArtifact checks one artifact against the turn and metadata
// invariants the pipeline guarantees at write time.
func validateArtifact(path string) []string {
	var issues []string

	base := strings.TrimSuffix(filepath.Base(path), ".json")
	exp, err := dialogue.ParseArtifactName(base)
	if err != nil {
		return []string{err.Error()}
	}

	d, err := dialogue.Read(path)
	if err != nil {
		return []string{err.Error()}
	}

	if err := d.Validate(exp); err != nil {
		issues = append(issues, err.Error())
	}
	if len(d.Turns) == 0 {
		issues = append(issues, "no turns")
	}
	for i, t := range d.Turns {
		if t.Number != i+1 {
			issues = append(issues, fmt.Sprintf("turn %d out of sequence (position %d)", t.Number, i+1))
		}
		if t.Speaker != transcript.SpeakerLearner && t.Speaker != transcript.SpeakerBot {
			issues = append(issues, fmt.Sprintf("turn %d has invalid speaker %q", t.Number, t.Speaker))
		}
		if strings.TrimSpace(t.Text) == "" {
			issues = append(issues, fmt.Sprintf("turn %d has empty text", t.Number))
		}
	}

	if stat, err := os.Stat(path); err == nil && stat.Size() == 0 {
		issues = append(issues, "empty file")
	}
	return issues
}
