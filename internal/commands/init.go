package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tabsplit-dev/tabsplit/internal/config"
	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/plan"
	"github.com/tabsplit-dev/tabsplit/internal/split"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a tabsplit project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized tabsplit project at %s\n", absDir)
			return nil
		},
	}

	return cmd
}

func runInit(dir string) error {
	for _, d := range []string{"data", "receipts", "plans"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "data", "receipts.db")
	if err := config.Save(filepath.Join(dir, config.DefaultPath), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// A starter plan, so there is a concrete file to edit.
	sample := &plan.Plan{
		Participants: []model.Participant{
			{ID: "alice", Name: "Alice"},
			{ID: "bob", Name: "Bob"},
		},
		Assignments: map[string]split.ItemAssignment{
			"item-1": {Sharers: []string{"alice", "bob"}},
		},
		TaxPolicy: string(split.PolicyProportional),
		TipPolicy: string(split.PolicyProportional),
	}
	if err := plan.Save(filepath.Join(dir, "plans", "example.yaml"), sample); err != nil {
		return fmt.Errorf("writing sample plan: %w", err)
	}

	return nil
}
