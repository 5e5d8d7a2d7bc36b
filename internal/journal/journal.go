package journal

import (
	"github.com/shopspring/decimal"
)

// Status tracks how an entry was produced and whether it needs human review.
// The approved and flagged states are set by the external review surface,
// never by this pipeline.
type Status string

const (
	StatusNeedsReviewLowConfidence   Status = "needs_review_low_confidence"
	StatusAutoGeneratedHighConf      Status = "auto_generated_high_confidence"
	StatusNeedsReviewMatchedNoRule   Status = "needs_review_matched_no_rule"
	StatusNeedsReviewUnmatchedDebit  Status = "needs_review_unmatched_debit"
	StatusAutoGeneratedIncomeHigh    Status = "auto_generated_income_high_confidence"
	StatusNeedsReviewUnmatchedCredit Status = "needs_review_unmatched_credit"
	StatusApproved                   Status = "approved"
	StatusFlaggedForCorrection       Status = "flagged_for_correction"
)

// Posting moves value into (debit) or out of (credit) a single account.
// Exactly one side is nonzero by convention, but nothing enforces that;
// both sides are accumulated independently.
type Posting struct {
	Account string `json:"account"`
	Debit   Amount `json:"debit"`
	Credit  Amount `json:"credit"`
}

// Entry is one journal entry. Date is an opaque label as far as the trial
// balance is concerned; only the journal generator parses it.
type Entry struct {
	ID                string          `json:"id,omitempty"`
	Date              string          `json:"date"`
	Description       string          `json:"description"`
	Postings          []Posting       `json:"postings"`
	Status            Status          `json:"status,omitempty"`
	ConfidenceScore   decimal.Decimal `json:"confidence_score,omitempty"`
	SourceStatementID string          `json:"source_statement_id,omitempty"`
	SourceVoucherID   string          `json:"source_voucher_id,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}
