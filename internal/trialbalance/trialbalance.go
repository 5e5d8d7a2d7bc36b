// Package trialbalance aggregates journal entries into a per-account trial
// balance and writes it as CSV. Malformed entries and postings are
// tolerated: the aggregator warns, skips or zeroes the offending unit, and
// keeps going. Only sink I/O failure fails a run.
package trialbalance

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tatti1204/jules/internal/journal"
)

// DefaultPath is the repository-relative default report location.
const DefaultPath = "data/trial_balance.csv"

// Header is the fixed report header row.
var Header = []string{"Account Name", "Total Debit", "Total Credit"}

// GrandTotalLabel labels the final report row.
const GrandTotalLabel = "GRAND TOTAL"

// AccountTotals holds the running debit and credit sums for one account.
type AccountTotals struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Code identifies the kind of anomaly a Diagnostic reports.
type Code string

const (
	CodeEntryWithoutPostings  Code = "entry_without_postings"
	CodePostingWithoutAccount Code = "posting_without_account"
	CodeInvalidAmount         Code = "invalid_amount"
	CodeEntryUnbalanced       Code = "entry_unbalanced"
	CodeGrandTotalUnbalanced  Code = "grand_total_unbalanced"
)

// Diagnostic is one structured anomaly record. The slice of diagnostics on
// a Report is the machine-readable counterpart of the log output, so
// callers can inspect anomalies without capturing logs.
type Diagnostic struct {
	Code      Code     `json:"code"`
	Severity  Severity `json:"severity"`
	EntryDate string   `json:"entry_date,omitempty"`
	EntryDesc string   `json:"entry_description,omitempty"`
	Account   string   `json:"account,omitempty"`
	Field     string   `json:"field,omitempty"`
	Detail    string   `json:"detail,omitempty"`
}

// Report is the outcome of one aggregation run.
type Report struct {
	Totals      map[string]AccountTotals `json:"totals"`
	GrandDebit  decimal.Decimal          `json:"grand_debit"`
	GrandCredit decimal.Decimal          `json:"grand_credit"`
	Balanced    bool                     `json:"balanced"`
	Diagnostics []Diagnostic             `json:"diagnostics,omitempty"`
}

// Accounts returns the account names in report order (ascending by name).
func (r *Report) Accounts() []string {
	names := make([]string, 0, len(r.Totals))
	for name := range r.Totals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Generator struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{log: log}
}

// Aggregate folds entries into per-account totals. It never fails;
// anomalies become diagnostics on the returned report and warnings on the
// logger. Entries are traversed in input order so diagnostic sequencing is
// deterministic.
func (g *Generator) Aggregate(entries []journal.Entry) *Report {
	r := &Report{Totals: make(map[string]AccountTotals)}

	if len(entries) == 0 {
		g.log.Warn("no journal entries provided to generate trial balance")
	}

	for _, entry := range entries {
		if len(entry.Postings) == 0 {
			g.diag(r, Diagnostic{
				Code:      CodeEntryWithoutPostings,
				Severity:  SeverityWarning,
				EntryDate: entry.Date,
				EntryDesc: entry.Description,
				Detail:    "entry has no postings, skipping",
			})
			continue
		}

		entryDebit := decimal.Zero
		entryCredit := decimal.Zero

		for i, p := range entry.Postings {
			if strings.TrimSpace(p.Account) == "" {
				g.diag(r, Diagnostic{
					Code:      CodePostingWithoutAccount,
					Severity:  SeverityWarning,
					EntryDate: entry.Date,
					EntryDesc: entry.Description,
					Detail:    fmt.Sprintf("posting #%d has no account name, skipping posting", i+1),
				})
				continue
			}

			debit := p.Debit.Decimal()
			if !p.Debit.Valid() {
				g.diag(r, Diagnostic{
					Code:      CodeInvalidAmount,
					Severity:  SeverityWarning,
					EntryDate: entry.Date,
					EntryDesc: entry.Description,
					Account:   p.Account,
					Field:     "debit",
					Detail:    fmt.Sprintf("invalid debit amount %q, using 0", p.Debit.Raw()),
				})
			}
			credit := p.Credit.Decimal()
			if !p.Credit.Valid() {
				g.diag(r, Diagnostic{
					Code:      CodeInvalidAmount,
					Severity:  SeverityWarning,
					EntryDate: entry.Date,
					EntryDesc: entry.Description,
					Account:   p.Account,
					Field:     "credit",
					Detail:    fmt.Sprintf("invalid credit amount %q, using 0", p.Credit.Raw()),
				})
			}

			totals := r.Totals[p.Account]
			totals.Debit = totals.Debit.Add(debit)
			totals.Credit = totals.Credit.Add(credit)
			r.Totals[p.Account] = totals

			entryDebit = entryDebit.Add(debit)
			entryCredit = entryCredit.Add(credit)
		}

		if !entryDebit.Equal(entryCredit) {
			g.diag(r, Diagnostic{
				Code:      CodeEntryUnbalanced,
				Severity:  SeverityWarning,
				EntryDate: entry.Date,
				EntryDesc: entry.Description,
				Detail: fmt.Sprintf("entry is unbalanced: debits %s, credits %s, still processing valid postings",
					entryDebit.String(), entryCredit.String()),
			})
		}
	}

	if len(entries) > 0 && len(r.Totals) == 0 {
		g.log.Warn("no valid postings found in journal entries")
	}

	grandDebit := decimal.Zero
	grandCredit := decimal.Zero
	for _, name := range r.Accounts() {
		totals := r.Totals[name]
		grandDebit = grandDebit.Add(totals.Debit)
		grandCredit = grandCredit.Add(totals.Credit)
	}
	r.GrandDebit = grandDebit
	r.GrandCredit = grandCredit
	r.Balanced = grandDebit.Equal(grandCredit)

	if !r.Balanced {
		g.diag(r, Diagnostic{
			Code:     CodeGrandTotalUnbalanced,
			Severity: SeverityCritical,
			Detail: fmt.Sprintf("trial balance is unbalanced: total debits %s, total credits %s",
				grandDebit.String(), grandCredit.String()),
		})
	}

	return r
}

// WriteCSV writes the report: header, one row per account sorted by name,
// then the grand-total row. Amounts are rendered in their natural decimal
// form.
func (g *Generator) WriteCSV(r *Report, sink io.Writer) error {
	w := csv.NewWriter(sink)

	if err := w.Write(Header); err != nil {
		return fmt.Errorf("write trial balance header: %w", err)
	}
	for _, name := range r.Accounts() {
		totals := r.Totals[name]
		if err := w.Write([]string{name, totals.Debit.String(), totals.Credit.String()}); err != nil {
			return fmt.Errorf("write trial balance row for %s: %w", name, err)
		}
	}
	if err := w.Write([]string{GrandTotalLabel, r.GrandDebit.String(), r.GrandCredit.String()}); err != nil {
		return fmt.Errorf("write trial balance grand total: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush trial balance: %w", err)
	}
	return nil
}

// Generate aggregates entries and writes the report to sink. It returns
// false only when writing fails; the totals computed so far are returned
// either way for diagnostic use.
func (g *Generator) Generate(entries []journal.Entry, sink io.Writer) (bool, map[string]AccountTotals) {
	r := g.Aggregate(entries)

	if err := g.WriteCSV(r, sink); err != nil {
		g.log.Error("failed to write trial balance", zap.Error(err))
		return false, r.Totals
	}

	g.logOutcome(r)
	return true, r.Totals
}

// GenerateFile aggregates entries and writes the report to path, creating
// parent directories as needed. The file is closed on every exit path.
func (g *Generator) GenerateFile(entries []journal.Entry, path string) (bool, map[string]AccountTotals) {
	r := g.Aggregate(entries)
	if err := g.WriteFile(r, path); err != nil {
		g.log.Error("failed to write trial balance", zap.String("path", path), zap.Error(err))
		return false, r.Totals
	}

	g.log.Info("trial balance generated", zap.String("path", path))
	g.logOutcome(r)
	return true, r.Totals
}

// WriteFile writes an already-aggregated report to path.
func (g *Generator) WriteFile(r *Report, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open trial balance %s: %w", path, err)
	}

	if err := g.WriteCSV(r, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close trial balance %s: %w", path, err)
	}
	return nil
}

// logOutcome reports the grand-total balance check. Grand-total imbalance
// is a data-quality signal distinct from write failure, surfaced at error
// level so operators can alert on it.
func (g *Generator) logOutcome(r *Report) {
	if r.Balanced {
		g.log.Info("trial balance is balanced",
			zap.String("total", r.GrandDebit.String()))
		return
	}
	g.log.Error("CRITICAL: trial balance is unbalanced",
		zap.String("total_debits", r.GrandDebit.String()),
		zap.String("total_credits", r.GrandCredit.String()))
}

// diag records a diagnostic on the report and mirrors it to the logger.
func (g *Generator) diag(r *Report, d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)

	fields := []zap.Field{zap.String("code", string(d.Code))}
	if d.EntryDate != "" {
		fields = append(fields, zap.String("entry_date", d.EntryDate))
	}
	if d.EntryDesc != "" {
		fields = append(fields, zap.String("entry_description", d.EntryDesc))
	}
	if d.Account != "" {
		fields = append(fields, zap.String("account", d.Account))
	}
	if d.Field != "" {
		fields = append(fields, zap.String("field", d.Field))
	}

	switch d.Severity {
	case SeverityCritical:
		g.log.Error(d.Detail, fields...)
	default:
		g.log.Warn(d.Detail, fields...)
	}
}
