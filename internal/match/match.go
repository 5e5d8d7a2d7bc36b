// Package match pairs bank statement debits with processed vouchers using
// exact amount equality, a date window, and keyword scoring.
package match

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tatti1204/jules/internal/statement"
	"github.com/tatti1204/jules/internal/voucher"
)

type Status string

const (
	StatusMatched   Status = "matched"
	StatusUnmatched Status = "unmatched"
	// StatusIgnored marks credits and zero-amount rows, which never match
	// vouchers.
	StatusIgnored Status = "ignored_credit_or_zero"
)

// Result pairs one statement transaction with at most one voucher.
type Result struct {
	Statement statement.Transaction
	Voucher   *voucher.Voucher
	Status    Status
}

// DefaultDateTolerance is the default matching window in days.
const DefaultDateTolerance = 3

const dateLayout = "2006-01-02"

type Matcher struct {
	toleranceDays int
	log           *zap.Logger
}

func New(toleranceDays int, log *zap.Logger) *Matcher {
	if toleranceDays <= 0 {
		toleranceDays = DefaultDateTolerance
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Matcher{toleranceDays: toleranceDays, log: log}
}

// Match produces one Result per statement transaction, in input order.
// Each voucher is consumed by at most one transaction.
func (m *Matcher) Match(txs []statement.Transaction, vouchers []voucher.Voucher) []Result {
	used := make([]bool, len(vouchers))

	results := make([]Result, 0, len(txs))
	for _, tx := range txs {
		if !tx.Amount.IsNegative() {
			results = append(results, Result{Statement: tx, Status: StatusIgnored})
			continue
		}

		if idx := m.findVoucher(tx, vouchers, used); idx >= 0 {
			used[idx] = true
			results = append(results, Result{Statement: tx, Voucher: &vouchers[idx], Status: StatusMatched})
		} else {
			results = append(results, Result{Statement: tx, Status: StatusUnmatched})
		}
	}
	return results
}

type candidate struct {
	index    int
	score    int
	dateDiff int
}

// findVoucher returns the index of the best-scoring unconsumed voucher for
// a statement debit, or -1.
func (m *Matcher) findVoucher(tx statement.Transaction, vouchers []voucher.Voucher, used []bool) int {
	txDate, err := time.Parse(dateLayout, tx.Date)
	if err != nil {
		m.log.Warn("statement transaction has unparseable date, cannot match",
			zap.String("date", tx.Date), zap.String("description", tx.Description))
		return -1
	}

	desc := strings.ToLower(tx.Description)
	want := tx.Amount.Abs()

	var candidates []candidate
	for i := range vouchers {
		if used[i] {
			continue
		}
		v := &vouchers[i]

		if !want.Equal(v.TotalAmount) {
			continue
		}

		diff := daysBetween(txDate, v.TransactionDate)
		if diff > m.toleranceDays {
			continue
		}

		// Date proximity, plus a large bonus for the vendor name appearing
		// verbatim in the statement description, else a smaller bonus per
		// matching vendor-name word.
		score := (m.toleranceDays - diff) * 10
		vendor := strings.ToLower(v.VendorName)
		if vendor != "" && strings.Contains(desc, vendor) {
			score += 50
		} else if vendor != "" {
			for _, part := range strings.Fields(vendor) {
				if len(part) > 2 && strings.Contains(desc, part) {
					score += 10
				}
			}
		}

		if score > 0 {
			candidates = append(candidates, candidate{index: i, score: score, dateDiff: diff})
		}
	}

	if len(candidates) == 0 {
		return -1
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].score != candidates[b].score {
			return candidates[a].score > candidates[b].score
		}
		return candidates[a].dateDiff < candidates[b].dateDiff
	})
	return candidates[0].index
}

func daysBetween(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
