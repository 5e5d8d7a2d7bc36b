package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tatti1204/jules/internal/journal"
	"github.com/tatti1204/jules/internal/trialbalance"
)

var (
	trialInputPath  string
	trialOutputPath string
)

var trialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Generate a trial balance from a journal entries export",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		input := trialInputPath
		if input == "" {
			input = filepath.Join(flagOutputDir, journalEntriesFilename)
		}
		output := trialOutputPath
		if output == "" {
			output = filepath.Join(flagOutputDir, trialBalanceFilename)
		}

		entries, err := journal.LoadJSON(input)
		if err != nil {
			return err
		}

		gen := trialbalance.New(log)
		report := gen.Aggregate(entries)
		if err := gen.WriteFile(report, output); err != nil {
			return err
		}

		printTrialBalance(report)
		fmt.Printf("\nReport written to %s\n", output)
		return nil
	},
}

func printTrialBalance(r *trialbalance.Report) {
	w := 70
	fmt.Println()
	fmt.Println(center("TRIAL BALANCE", w))
	fmt.Println(center(strings.Repeat("=", 20), w))
	fmt.Println()

	fmt.Printf("  %-30s %15s %15s\n", "ACCOUNT", "DEBIT", "CREDIT")
	fmt.Printf("  %-30s %15s %15s\n", "-------", "-----", "------")

	for _, name := range r.Accounts() {
		totals := r.Totals[name]
		display := name
		if len(display) > 28 {
			display = display[:28] + ".."
		}
		fmt.Printf("  %-30s %15s %15s\n", display, totals.Debit.String(), totals.Credit.String())
	}

	fmt.Printf("  %s\n", strings.Repeat("─", w-4))
	fmt.Printf("  %-30s %15s %15s\n", "GRAND TOTAL",
		r.GrandDebit.String(), r.GrandCredit.String())

	if r.Balanced {
		fmt.Println("\n  [BALANCED]")
	} else {
		fmt.Println("\n  [UNBALANCED!]")
	}
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func init() {
	trialCmd.Flags().StringVar(&trialInputPath, "input", "", "Journal entries JSON file (default <output-dir>/journal_entries.json)")
	trialCmd.Flags().StringVar(&trialOutputPath, "out", "", "Report destination (default <output-dir>/trial_balance.csv)")
	rootCmd.AddCommand(trialCmd)
}
