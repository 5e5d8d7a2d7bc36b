// Package statement parses bank statement CSV files into transactions.
package statement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrMissingHeaders = errors.New("statement csv missing required headers")

// requiredHeaders are matched case-insensitively against the first row.
var requiredHeaders = []string{"date", "description", "amount debit", "amount credit", "balance"}

// Transaction is one parsed statement row. Amount is negative for debits
// and positive for credits; Type is "debit", "credit", or empty for
// informational rows such as an initial balance.
type Transaction struct {
	ID          string
	Date        string
	Description string
	Amount      decimal.Decimal
	Type        string
	Balance     decimal.Decimal
}

// ParseFile parses a statement CSV on disk.
func ParseFile(path string, log *zap.Logger) ([]Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open statement %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, log)
}

// Parse reads statement rows, skipping malformed ones with a warning.
// Only a missing header set or an unreadable stream is an error.
func Parse(r io.Reader, log *zap.Logger) ([]Transaction, error) {
	if log == nil {
		log = zap.NewNop()
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrMissingHeaders
	}
	if err != nil {
		return nil, fmt.Errorf("read statement header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, h := range requiredHeaders {
		if _, ok := cols[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingHeaders, strings.Join(missing, ", "))
	}

	var txs []Transaction
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read statement row: %w", err)
		}

		field := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		date := field("date")
		description := field("description")
		if date == "" || description == "" {
			log.Warn("skipping statement row with missing date or description",
				zap.Strings("row", record))
			continue
		}

		debitStr := field("amount debit")
		creditStr := field("amount credit")
		balanceStr := field("balance")

		amount := decimal.Zero
		txType := ""
		switch {
		case debitStr != "" && debitStr != "0":
			d, err := decimal.NewFromString(debitStr)
			if err != nil {
				log.Warn("skipping statement row with unparseable debit",
					zap.String("date", date), zap.String("debit", debitStr))
				continue
			}
			amount = d.Abs().Neg()
			txType = "debit"
		case creditStr != "" && creditStr != "0":
			c, err := decimal.NewFromString(creditStr)
			if err != nil {
				log.Warn("skipping statement row with unparseable credit",
					zap.String("date", date), zap.String("credit", creditStr))
				continue
			}
			amount = c.Abs()
			txType = "credit"
		case strings.EqualFold(description, "initial balance"):
			// Recorded with zero amount; only the balance carries meaning.
		default:
			log.Info("skipping statement row with no debit or credit amount",
				zap.String("date", date), zap.String("description", description))
			continue
		}

		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			log.Warn("skipping statement row with unparseable balance",
				zap.String("date", date), zap.String("balance", balanceStr))
			continue
		}

		txs = append(txs, Transaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			Type:        txType,
			Balance:     balance,
		})
	}

	return txs, nil
}
