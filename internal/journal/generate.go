package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tatti1204/jules/internal/config"
	"github.com/tatti1204/jules/internal/match"
)

const dateLayout = "2006-01-02"

// Confidence levels assigned by the generator, from fully rule-routed
// entries down to suspense postings awaiting review.
var (
	confidenceHigh          = decimal.RequireFromString("0.9")
	confidenceIncomeHigh    = decimal.RequireFromString("0.8")
	confidenceMatchedNoRule = decimal.RequireFromString("0.6")
	confidenceCreditNoRule  = decimal.RequireFromString("0.5")
	confidenceUnmatched     = decimal.RequireFromString("0.3")
)

// GenerateOptions names the accounts used when rules cannot route a
// transaction.
type GenerateOptions struct {
	BankAccount     string
	SuspenseAccount string
}

func (o *GenerateOptions) defaults() {
	if o.BankAccount == "" {
		o.BankAccount = "Checking Account"
	}
	if o.SuspenseAccount == "" {
		o.SuspenseAccount = "Suspense"
	}
}

// ApplyRules returns the first rule whose keywords appear in the
// description, or nil. Rules without keywords never match.
func ApplyRules(description string, rules []config.Rule) *config.Rule {
	if description == "" {
		return nil
	}
	desc := strings.ToLower(description)

	for i := range rules {
		keywords := rules[i].Conditions.Keywords
		if len(keywords) == 0 {
			continue
		}
		for _, kw := range keywords {
			if kw != "" && strings.Contains(desc, strings.ToLower(kw)) {
				return &rules[i]
			}
		}
	}
	return nil
}

// Generate builds journal entries from match results. Every entry carries
// two postings: the routed account against the bank account. Transactions
// that cannot be routed by a rule land on the suspense account with a
// review status.
func Generate(results []match.Result, rules []config.Rule, opts GenerateOptions, log *zap.Logger) []Entry {
	if log == nil {
		log = zap.NewNop()
	}
	opts.defaults()

	var entries []Entry
	for i, res := range results {
		tx := res.Statement

		txDate, err := time.Parse(dateLayout, tx.Date)
		if err != nil {
			log.Warn("skipping journal entry with invalid statement date",
				zap.String("date", tx.Date), zap.String("description", tx.Description))
			continue
		}

		description := tx.Description
		if res.Voucher != nil && res.Voucher.VendorName != "" &&
			!strings.Contains(strings.ToLower(tx.Description), strings.ToLower(res.Voucher.VendorName)) {
			description = fmt.Sprintf("%s - %s", res.Voucher.VendorName, tx.Description)
		}

		entry := Entry{
			ID:                tx.ID,
			Date:              txDate.Format(dateLayout),
			Description:       description,
			SourceStatementID: tx.ID,
		}
		if entry.ID == "" {
			entry.ID = uuid.Must(uuid.NewV7()).String()
		}
		if res.Voucher != nil {
			entry.SourceVoucherID = res.Voucher.ID
		}

		switch {
		case res.Status == match.StatusMatched && res.Voucher != nil:
			ruleSource := res.Voucher.RawText
			if ruleSource == "" {
				ruleSource = res.Voucher.VendorName
			}
			rule := ApplyRules(ruleSource, rules)

			expenseAccount := opts.SuspenseAccount
			if rule != nil && rule.Account != "" {
				expenseAccount = rule.Account
				entry.Status = StatusAutoGeneratedHighConf
				entry.ConfidenceScore = confidenceHigh
			} else {
				entry.Status = StatusNeedsReviewMatchedNoRule
				entry.ConfidenceScore = confidenceMatchedNoRule
				entry.Notes = "Voucher matched to statement, but no specific rule found for GL account."
			}

			amount := tx.Amount.Abs()
			entry.Postings = []Posting{
				{Account: expenseAccount, Debit: Dec(amount), Credit: Dec(decimal.Zero)},
				{Account: opts.BankAccount, Debit: Dec(decimal.Zero), Credit: Dec(amount)},
			}

		case res.Status == match.StatusUnmatched && tx.Amount.IsNegative():
			amount := tx.Amount.Abs()
			entry.Postings = []Posting{
				{Account: opts.SuspenseAccount, Debit: Dec(amount), Credit: Dec(decimal.Zero)},
				{Account: opts.BankAccount, Debit: Dec(decimal.Zero), Credit: Dec(amount)},
			}
			entry.Status = StatusNeedsReviewUnmatchedDebit
			entry.ConfidenceScore = confidenceUnmatched
			entry.Notes = "Statement debit transaction with no matching voucher."

		case res.Status == match.StatusIgnored && tx.Amount.IsPositive():
			rule := ApplyRules(tx.Description, rules)

			incomeAccount := opts.SuspenseAccount
			if rule != nil && rule.Account != "" {
				incomeAccount = rule.Account
				entry.Status = StatusAutoGeneratedIncomeHigh
				entry.ConfidenceScore = confidenceIncomeHigh
			} else {
				entry.Status = StatusNeedsReviewUnmatchedCredit
				entry.ConfidenceScore = confidenceCreditNoRule
				entry.Notes = "Statement credit transaction with no specific rule for GL account."
			}

			entry.Postings = []Posting{
				{Account: opts.BankAccount, Debit: Dec(tx.Amount), Credit: Dec(decimal.Zero)},
				{Account: incomeAccount, Debit: Dec(decimal.Zero), Credit: Dec(tx.Amount)},
			}

		default:
			if !tx.Amount.IsZero() {
				log.Info("skipping statement transaction for journal generation",
					zap.Int("index", i), zap.String("description", tx.Description),
					zap.String("amount", tx.Amount.String()), zap.String("match_status", string(res.Status)))
			}
			continue
		}

		entries = append(entries, entry)
	}

	return entries
}
