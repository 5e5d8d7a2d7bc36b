package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tatti1204/jules/internal/config"
	"github.com/tatti1204/jules/internal/journal"
	"github.com/tatti1204/jules/internal/match"
	"github.com/tatti1204/jules/internal/statement"
	"github.com/tatti1204/jules/internal/trialbalance"
	"github.com/tatti1204/jules/internal/voucher"
)

const (
	journalEntriesFilename = "journal_entries.json"
	trialBalanceFilename   = "trial_balance.csv"
)

var (
	runStatementsPath string
	runSimVouchers    int
	runDateTolerance  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full batch pipeline",
	Long:  "Loads configuration, parses bank statements, matches them against vouchers, generates journal entries, and writes the journal export and trial balance into the output directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		log.Info("starting batch process")

		accounts, err := config.LoadAccounts(flagAccounts)
		if err != nil {
			return fmt.Errorf("load accounts configuration: %w", err)
		}
		if len(accounts) == 0 {
			return fmt.Errorf("no accounts configured in %s", flagAccounts)
		}

		rules, err := config.LoadRules(flagRules)
		if err != nil {
			log.Warn("rules configuration not loaded, proceeding without transaction rules",
				zap.Error(err))
			rules = nil
		}

		txs, err := collectStatements(runStatementsPath, log)
		if err != nil {
			return err
		}

		vouchers := simulateVouchers(runSimVouchers, log)
		if len(vouchers) == 0 {
			log.Warn("no vouchers processed, matching will likely leave all statements unmatched")
		}

		results := match.New(runDateTolerance, log).Match(txs, vouchers)
		log.Info("matching complete", zap.Int("items", len(results)))

		bankAccount := config.DefaultBankAccount(accounts, "Checking Account")
		log.Info("using default bank account for journal entries",
			zap.String("account", bankAccount))

		entries := journal.Generate(results, rules, journal.GenerateOptions{BankAccount: bankAccount}, log)
		log.Info("journal entries generated", zap.Int("count", len(entries)))

		jePath := filepath.Join(flagOutputDir, journalEntriesFilename)
		if err := journal.SaveJSON(entries, jePath); err != nil {
			log.Error("failed to save journal entries", zap.Error(err))
		} else {
			log.Info("journal entries saved", zap.String("path", jePath))
		}

		tbPath := filepath.Join(flagOutputDir, trialBalanceFilename)
		ok, _ := trialbalance.New(log).GenerateFile(entries, tbPath)
		if !ok {
			return fmt.Errorf("failed to generate trial balance at %s", tbPath)
		}

		log.Info("batch process completed")
		return nil
	},
}

// collectStatements parses a statement CSV file, or every *.csv in a
// directory, assigning each transaction a deterministic source ID.
func collectStatements(path string, log *zap.Logger) ([]statement.Transaction, error) {
	if path == "" {
		log.Warn("no statements path provided, skipping statement processing")
		return nil, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("statements path: %w", err)
	}

	var all []statement.Transaction
	parseOne := func(file string) error {
		log.Info("parsing statement file", zap.String("path", file))
		txs, err := statement.ParseFile(file, log)
		if err != nil {
			return err
		}
		base := filepath.Base(file)
		for i := range txs {
			txs[i].ID = fmt.Sprintf("stmt_%s_%d", base, i+1)
		}
		all = append(all, txs...)
		return nil
	}

	if info.IsDir() {
		dirEntries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read statements directory: %w", err)
		}
		for _, de := range dirEntries {
			if de.IsDir() || !strings.EqualFold(filepath.Ext(de.Name()), ".csv") {
				continue
			}
			if err := parseOne(filepath.Join(path, de.Name())); err != nil {
				return nil, err
			}
		}
	} else if err := parseOne(path); err != nil {
		return nil, err
	}

	if len(all) == 0 {
		log.Warn("no statement transactions parsed, further processing may yield empty results")
	}
	return all, nil
}

// simulateVouchers stands in for iterating real voucher files. Every other
// voucher is varied so matching has more than one vendor to work with.
func simulateVouchers(n int, log *zap.Logger) []voucher.Voucher {
	var vouchers []voucher.Voucher
	for i := 0; i < n; i++ {
		filename := fmt.Sprintf("simulated_voucher_%d.pdf", i+1)
		ex := voucher.ExtractPlaceholder(filename)
		if i%2 == 0 && strings.Contains(ex.VendorName, "Example Store") {
			ex.VendorName = "Another Vendor Co"
			ex.TotalAmount = "75.20"
			ex.LineItems = []voucher.ExtractedLineItem{
				{Description: "Service X", Quantity: 1, UnitPrice: "75.20", TotalPrice: "75.20"},
			}
		}

		v, err := voucher.Structure(ex, log)
		if err != nil {
			log.Warn("skipping voucher that failed structuring",
				zap.String("file", filename), zap.Error(err))
			continue
		}
		v.ID = fmt.Sprintf("vouchSim%d", i+1)
		v.OriginalFilename = filename
		vouchers = append(vouchers, *v)
	}

	log.Info("simulated voucher processing", zap.Int("count", len(vouchers)))
	return vouchers
}

func init() {
	runCmd.Flags().StringVar(&runStatementsPath, "statements", "", "Bank statement CSV file or directory of CSVs")
	runCmd.Flags().IntVar(&runSimVouchers, "sim-vouchers", 3, "Number of vouchers to simulate")
	runCmd.Flags().IntVar(&runDateTolerance, "date-tolerance", match.DefaultDateTolerance, "Matching date tolerance in days")
	rootCmd.AddCommand(runCmd)
}
