package trialbalance

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tatti1204/jules/internal/journal"
)

func posting(account, debit, credit string) journal.Posting {
	return journal.Posting{
		Account: account,
		Debit:   journal.ParseAmount(debit),
		Credit:  journal.ParseAmount(credit),
	}
}

func sampleEntries() []journal.Entry {
	return []journal.Entry{
		{
			Date: "2023-01-01", Description: "Entry 1",
			Postings: []journal.Posting{
				posting("Cash", "1000.00", "0"),
				posting("Capital", "0", "1000.00"),
			},
		},
		{
			Date: "2023-01-02", Description: "Entry 2",
			Postings: []journal.Posting{
				posting("Office Supplies", "50.00", "0"),
				posting("Cash", "0", "50.00"),
			},
		},
		{
			Date: "2023-01-03", Description: "Entry 3",
			Postings: []journal.Posting{
				posting("Cash", "200.00", "0"),
				posting("Sales Revenue", "0", "200.00"),
			},
		},
		{
			Date: "2023-01-04", Description: "Entry 4",
			Postings: []journal.Posting{
				posting("Rent Expense", "150.00", "0.00"),
				posting("Cash", "0.00", "150.00"),
			},
		},
	}
}

func assertTotals(t *testing.T, totals map[string]AccountTotals, account, debit, credit string) {
	t.Helper()
	got, ok := totals[account]
	require.True(t, ok, "missing account %s", account)
	assert.True(t, got.Debit.Equal(decimal.RequireFromString(debit)),
		"%s debit: got %s, want %s", account, got.Debit, debit)
	assert.True(t, got.Credit.Equal(decimal.RequireFromString(credit)),
		"%s credit: got %s, want %s", account, got.Credit, credit)
}

func diagCodes(diags []Diagnostic) []Code {
	codes := make([]Code, 0, len(diags))
	for _, d := range diags {
		codes = append(codes, d.Code)
	}
	return codes
}

func TestGenerateSuccess(t *testing.T) {
	var buf bytes.Buffer
	ok, totals := New(zap.NewNop()).Generate(sampleEntries(), &buf)

	require.True(t, ok)
	require.Len(t, totals, 5)
	assertTotals(t, totals, "Cash", "1200.00", "200.00")
	assertTotals(t, totals, "Capital", "0", "1000.00")
	assertTotals(t, totals, "Office Supplies", "50.00", "0")
	assertTotals(t, totals, "Sales Revenue", "0", "200.00")
	assertTotals(t, totals, "Rent Expense", "150.00", "0")

	want := strings.Join([]string{
		"Account Name,Total Debit,Total Credit",
		"Capital,0,1000",
		"Cash,1200,200",
		"Office Supplies,50,0",
		"Rent Expense,150,0",
		"Sales Revenue,0,200",
		"GRAND TOTAL,1400,1400",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestBalanceInvariant(t *testing.T) {
	r := New(nil).Aggregate(sampleEntries())

	assert.True(t, r.Balanced)
	assert.True(t, r.GrandDebit.Equal(r.GrandCredit))
	assert.True(t, r.GrandDebit.Equal(decimal.RequireFromString("1400")))
	assert.Empty(t, r.Diagnostics)
}

func TestEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	ok, totals := New(nil).Generate(nil, &buf)

	require.True(t, ok)
	assert.Empty(t, totals)

	want := "Account Name,Total Debit,Total Credit\nGRAND TOTAL,0,0\n"
	assert.Equal(t, want, buf.String())
}

func TestEntryWithoutPostings(t *testing.T) {
	entries := append(sampleEntries(), journal.Entry{
		Date: "2023-11-01", Description: "Empty Posting Entry",
	})

	var buf bytes.Buffer
	gen := New(nil)
	ok, totals := gen.Generate(entries, &buf)

	require.True(t, ok)
	assert.Len(t, totals, 5)

	r := gen.Aggregate(entries)
	assert.Contains(t, diagCodes(r.Diagnostics), CodeEntryWithoutPostings)
	assert.True(t, r.Balanced)
}

func TestOnlyInvalidPostings(t *testing.T) {
	entries := []journal.Entry{
		{
			Date: "2023-11-02", Description: "Invalid Postings Only",
			Postings: []journal.Posting{
				posting("", "10", "0"),
				posting("BadAmount", "ABC", "0"),
			},
		},
	}

	var buf bytes.Buffer
	gen := New(nil)
	ok, totals := gen.Generate(entries, &buf)

	require.True(t, ok)
	// The nameless posting vanishes; the bad-amount posting still creates
	// its account with zeroed totals.
	require.Len(t, totals, 1)
	assertTotals(t, totals, "BadAmount", "0", "0")

	r := gen.Aggregate(entries)
	codes := diagCodes(r.Diagnostics)
	assert.Contains(t, codes, CodePostingWithoutAccount)
	assert.Contains(t, codes, CodeInvalidAmount)
}

func TestMalformedAmountTolerance(t *testing.T) {
	entries := []journal.Entry{
		{
			Date: "2023-11-03", Description: "Bad debit, good credit",
			Postings: []journal.Posting{
				posting("Cash", "ABC", "10"),
			},
		},
	}

	var buf bytes.Buffer
	ok, totals := New(nil).Generate(entries, &buf)

	require.True(t, ok)
	assertTotals(t, totals, "Cash", "0", "10")
}

func TestUnbalancedEntryStillCounted(t *testing.T) {
	entries := []journal.Entry{
		{
			Date: "2023-10-11", Description: "Partial Payment",
			Postings: []journal.Posting{
				posting("Accounts Payable", "100", "0"),
				posting("Cash", "0", "90"),
			},
		},
	}

	gen := New(nil)
	r := gen.Aggregate(entries)

	assertTotals(t, r.Totals, "Accounts Payable", "100", "0")
	assertTotals(t, r.Totals, "Cash", "0", "90")
	assert.False(t, r.Balanced)

	codes := diagCodes(r.Diagnostics)
	assert.Contains(t, codes, CodeEntryUnbalanced)
	assert.Contains(t, codes, CodeGrandTotalUnbalanced)

	// Entry-level and grand-total imbalance carry distinct severities.
	for _, d := range r.Diagnostics {
		switch d.Code {
		case CodeEntryUnbalanced:
			assert.Equal(t, SeverityWarning, d.Severity)
		case CodeGrandTotalUnbalanced:
			assert.Equal(t, SeverityCritical, d.Severity)
		}
	}

	var buf bytes.Buffer
	ok, _ := gen.Generate(entries, &buf)
	assert.True(t, ok, "imbalance is a data-quality signal, not a write error")
}

func TestSorting(t *testing.T) {
	entries := []journal.Entry{
		{
			Date: "2023-12-01", Description: "Out of order accounts",
			Postings: []journal.Posting{
				posting("Zeta", "10", "0"),
				posting("Alpha", "0", "10"),
				posting("Mid", "5", "5"),
			},
		},
	}

	var buf bytes.Buffer
	ok, _ := New(nil).Generate(entries, &buf)
	require.True(t, ok)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "Alpha,"))
	assert.True(t, strings.HasPrefix(lines[2], "Mid,"))
	assert.True(t, strings.HasPrefix(lines[3], "Zeta,"))
	assert.True(t, strings.HasPrefix(lines[4], "GRAND TOTAL,"))
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteFailureStillReturnsTotals(t *testing.T) {
	ok, totals := New(nil).Generate(sampleEntries(), failWriter{})

	assert.False(t, ok)
	require.Len(t, totals, 5)
	assertTotals(t, totals, "Cash", "1200.00", "200.00")
}

func TestGenerateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "trial_balance.csv")

	ok, totals := New(nil).GenerateFile(sampleEntries(), path)
	require.True(t, ok)
	assert.Len(t, totals, 5)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Account Name,Total Debit,Total Credit\n"))
	assert.True(t, strings.HasSuffix(string(data), "GRAND TOTAL,1400,1400\n"))
}

func TestGenerateFileOpenFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// Parent "directory" is a regular file, so the sink cannot be opened.
	ok, totals := New(nil).GenerateFile(sampleEntries(), filepath.Join(blocker, "trial_balance.csv"))

	assert.False(t, ok)
	require.Len(t, totals, 5)
	assertTotals(t, totals, "Capital", "0", "1000.00")
}

func TestDuplicateEntriesAreIndependent(t *testing.T) {
	entry := journal.Entry{
		Date: "2023-05-01", Description: "Same label",
		Postings: []journal.Posting{
			posting("Cash", "10", "0"),
			posting("Sales Revenue", "0", "10"),
		},
	}

	r := New(nil).Aggregate([]journal.Entry{entry, entry})
	assertTotals(t, r.Totals, "Cash", "20", "0")
	assertTotals(t, r.Totals, "Sales Revenue", "0", "20")
}
