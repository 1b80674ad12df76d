package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tabsplit-dev/tabsplit/internal/storage/sqlite"
)

func newReceiptsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "Browse stored receipts and their settlements",
	}
	cmd.AddCommand(newReceiptsListCommand(configPath))
	cmd.AddCommand(newReceiptsShowCommand(configPath))
	return cmd
}

func newReceiptsListCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored receipts, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			summaries, err := store.ListReceipts(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no receipts stored")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMERCHANT\tTOTAL")
			for _, s := range summaries {
				fmt.Fprintf(w, "%s\t%s\t%s %s\n", s.ID, s.Merchant, s.Total, s.Currency)
			}
			return w.Flush()
		},
	}
}

func newReceiptsShowCommand(configPath *string) *cobra.Command {
	var withSettlement bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one stored receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			receipt, err := store.GetReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if receipt.Merchant != "" {
				fmt.Fprintf(out, "%s\n", receipt.Merchant)
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, item := range receipt.Items {
				fmt.Fprintf(w, "%s\t%s\n", item.Name, item.Amount)
			}
			w.Flush()
			fmt.Fprintf(out, "tax %s, tip %s, total %s\n", receipt.Tax, receipt.Tip, receipt.Total)

			if withSettlement {
				breakdown, err := store.GetSettlement(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				printShares(out, *breakdown, false)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSettlement, "settlement", false, "also show the stored settlement")

	return cmd
}

func openStore(configPath string) (*sqlite.SQLiteStore, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return sqlite.New(cfg.Storage.DBPath)
}
