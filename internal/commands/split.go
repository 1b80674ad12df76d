package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tabsplit-dev/tabsplit/internal/model"
	"github.com/tabsplit-dev/tabsplit/internal/plan"
	"github.com/tabsplit-dev/tabsplit/internal/split"
)

func newSplitCommand() *cobra.Command {
	var planPath string
	var detailed bool
	var asJSON bool
	var payer string

	cmd := &cobra.Command{
		Use:   "split <receipt.json>",
		Short: "Allocate a receipt across participants per a split plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt, err := plan.LoadReceipt(args[0])
			if err != nil {
				return err
			}
			p, err := plan.Load(planPath)
			if err != nil {
				return err
			}
			cfg, err := p.Config(receipt.Currency)
			if err != nil {
				return err
			}

			breakdown, err := split.Allocate(receipt, p.Participants, p.Assignments, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(breakdown)
			}

			for _, warning := range breakdown.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", warning)
			}
			if detailed {
				printItems(out, receipt, p.Assignments)
			}
			printShares(out, breakdown, cfg.Cashback != nil)

			if payer != "" {
				transfers, err := split.Transfers(breakdown, payer)
				if err != nil {
					return err
				}
				printTransfers(out, transfers)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "split plan YAML file (required)")
	_ = cmd.MarkFlagRequired("plan")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "list each item and who shares it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full breakdown as JSON")
	cmd.Flags().StringVar(&payer, "payer", "", "participant who paid; prints who owes them what")

	return cmd
}

func printItems(out io.Writer, receipt model.Receipt, assignments map[string]split.ItemAssignment) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tAMOUNT\tSHARED BY")
	for _, item := range receipt.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.Name, item.Amount, describeSharing(assignments[item.ID]))
	}
	w.Flush()
	fmt.Fprintln(out)
}

func describeSharing(a split.ItemAssignment) string {
	if len(a.Sharers) > 0 {
		return strings.Join(a.Sharers, ", ")
	}
	ids := make([]string, 0, len(a.Weights))
	for id := range a.Weights {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s (x%d)", id, a.Weights[id]))
	}
	return strings.Join(parts, ", ")
}

func printShares(out io.Writer, b model.SettlementBreakdown, withCashback bool) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if withCashback {
		fmt.Fprintln(w, "PARTICIPANT\tITEMS\tTAX\tTIP\tCASHBACK\tTOTAL OWED")
	} else {
		fmt.Fprintln(w, "PARTICIPANT\tITEMS\tTAX\tTIP\tTOTAL OWED")
	}
	for _, id := range b.ParticipantIDs() {
		s := b.Shares[id]
		if withCashback {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t-%s\t%s\n",
				id, s.ItemsSubtotal, s.TaxShare, s.TipShare, s.CashbackAdjustment, s.TotalOwed)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				id, s.ItemsSubtotal, s.TaxShare, s.TipShare, s.TotalOwed)
		}
	}
	if withCashback {
		fmt.Fprintf(w, "RECEIPT TOTAL\t\t\t\t\t%s\n", b.Total)
	} else {
		fmt.Fprintf(w, "RECEIPT TOTAL\t\t\t\t%s\n", b.Total)
	}
	w.Flush()
}

func printTransfers(out io.Writer, transfers []model.Transfer) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "FROM\tTO\tAMOUNT")
	for _, tr := range transfers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", tr.FromID, tr.ToID, tr.Amount)
	}
	w.Flush()
}
