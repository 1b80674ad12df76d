package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tabsplit-dev/tabsplit/internal/extract"
	"github.com/tabsplit-dev/tabsplit/internal/plan"
)

func newExtractCommand(configPath *string) *cobra.Command {
	var outPath string
	var verify bool

	cmd := &cobra.Command{
		Use:   "extract <recognized-text-file>",
		Short: "Extract receipt fields from recognized text via a local model",
		Long: "Runs per-field extraction prompts over already-recognized receipt text " +
			"and prints the candidate receipt. With --verify, missing tax and tip " +
			"default to zero and the result is promoted to a verified receipt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading receipt text: %w", err)
			}

			prompts, err := extract.LoadPrompts(cfg.Extraction.PromptPath)
			if err != nil {
				return err
			}
			client := extract.NewOllamaClient(cfg.Extraction.OllamaHost, cfg.Extraction.Model)
			extractor := extract.New(client, prompts)

			candidate, err := extractor.Extract(cmd.Context(), string(text))
			if err != nil {
				return err
			}
			if len(candidate.Missing) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "could not determine: %s\n", strings.Join(candidate.Missing, ", "))
			}

			if verify {
				receipt, err := extract.Verify(candidate)
				if err != nil {
					return err
				}
				if outPath != "" {
					return plan.SaveReceipt(outPath, receipt)
				}
				return writeJSON(cmd, receipt)
			}

			if outPath != "" {
				return plan.SaveCandidate(outPath, candidate)
			}
			return writeJSON(cmd, candidate)
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result to a file instead of stdout")
	cmd.Flags().BoolVar(&verify, "verify", false, "promote the candidate to a verified receipt")

	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
