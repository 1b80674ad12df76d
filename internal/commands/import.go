package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tabsplit-dev/tabsplit/internal/importer"
	"github.com/tabsplit-dev/tabsplit/internal/plan"
)

func newImportCommand(configPath *string) *cobra.Command {
	var merchant string
	var currency string
	var outPath string
	var store bool

	cmd := &cobra.Command{
		Use:   "import <receipt.csv>",
		Short: "Build a receipt from a manually entered CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening receipt CSV: %w", err)
			}
			defer f.Close()

			receipt, err := importer.Parse(f, merchant, currency)
			if err != nil {
				return err
			}

			if store {
				s, err := openStore(*configPath)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.SaveReceipt(cmd.Context(), &receipt); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "stored receipt %s\n", receipt.ID)
				return nil
			}

			if outPath != "" {
				return plan.SaveReceipt(outPath, receipt)
			}
			return writeJSON(cmd, receipt)
		},
	}

	cmd.Flags().StringVar(&merchant, "merchant", "", "merchant name for the receipt")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the receipt JSON to a file")
	cmd.Flags().BoolVar(&store, "store", false, "save the receipt to the local database")

	return cmd
}
