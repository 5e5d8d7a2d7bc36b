// Package voucher turns raw receipt extraction output into validated
// vouchers. The OCR engine itself is out of scope; ExtractPlaceholder
// stands in for it.
package voucher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrMissingVendor = errors.New("voucher is missing a vendor name")
	ErrMissingDate   = errors.New("voucher is missing a transaction date")
	ErrInvalidDate   = errors.New("voucher transaction date must be YYYY-MM-DD")
	ErrMissingAmount = errors.New("voucher is missing a total amount")
	ErrInvalidAmount = errors.New("voucher total amount is not a valid decimal")
)

const dateLayout = "2006-01-02"

// Extracted is the untyped output of receipt extraction, amounts and dates
// still as strings.
type Extracted struct {
	VendorName      string
	TransactionDate string
	TotalAmount     string
	Currency        string
	LineItems       []ExtractedLineItem
	RawText         string
}

type ExtractedLineItem struct {
	Description string
	Quantity    int
	UnitPrice   string
	TotalPrice  string
}

// LineItem is a validated receipt line.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// Voucher is a validated receipt ready for matching.
type Voucher struct {
	ID               string          `json:"id,omitempty"`
	VendorName       string          `json:"vendor_name"`
	TransactionDate  time.Time       `json:"transaction_date"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Currency         string          `json:"currency"`
	LineItems        []LineItem      `json:"line_items"`
	RawText          string          `json:"raw_text,omitempty"`
	OriginalFilename string          `json:"original_filename,omitempty"`
}

// ExtractPlaceholder simulates OCR for a voucher file, returning canned
// extraction output.
func ExtractPlaceholder(filename string) Extracted {
	return Extracted{
		VendorName:      "Example Store",
		TransactionDate: "2023-10-20",
		TotalAmount:     "125.50",
		Currency:        "USD",
		LineItems: []ExtractedLineItem{
			{Description: "Item A", Quantity: 2, UnitPrice: "50.00", TotalPrice: "100.00"},
			{Description: "Item B", Quantity: 1, UnitPrice: "25.50", TotalPrice: "25.50"},
		},
		RawText: "Example Store\n123 Main St\nDate: 2023-10-20\nItem A 2 @ 50.00 = 100.00\nItem B 1 @ 25.50 = 25.50\nTotal: 125.50",
	}
}

// lineTotalTolerance allows for per-unit rounding in source receipts when
// comparing quantity * unit price against the stated line total.
var lineTotalTolerance = decimal.RequireFromString("0.015")

// Structure validates and normalizes extracted data. Required fields that
// are missing or malformed fail the whole voucher; optional fields are
// repaired or dropped with a warning.
func Structure(ex Extracted, log *zap.Logger) (*Voucher, error) {
	if log == nil {
		log = zap.NewNop()
	}

	vendor := strings.TrimSpace(ex.VendorName)
	if vendor == "" {
		return nil, ErrMissingVendor
	}

	if strings.TrimSpace(ex.TransactionDate) == "" {
		return nil, ErrMissingDate
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(ex.TransactionDate))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, ex.TransactionDate)
	}

	if strings.TrimSpace(ex.TotalAmount) == "" {
		return nil, ErrMissingAmount
	}
	total, err := decimal.NewFromString(strings.TrimSpace(ex.TotalAmount))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, ex.TotalAmount)
	}
	if total.IsNegative() {
		log.Warn("voucher total amount is negative, flipping sign",
			zap.String("vendor", vendor), zap.String("total", total.String()))
		total = total.Abs()
	}

	currency := strings.ToUpper(strings.TrimSpace(ex.Currency))
	if currency == "" {
		currency = "USD"
	} else if len(currency) != 3 {
		log.Warn("invalid currency code on voucher, defaulting to USD",
			zap.String("vendor", vendor), zap.String("currency", ex.Currency))
		currency = "USD"
	}

	v := &Voucher{
		VendorName:      vendor,
		TransactionDate: date,
		TotalAmount:     total,
		Currency:        currency,
		RawText:         strings.TrimSpace(ex.RawText),
	}

	for _, item := range ex.LineItems {
		unit, err := decimal.NewFromString(strings.TrimSpace(item.UnitPrice))
		if err != nil {
			log.Warn("skipping malformed voucher line item",
				zap.String("vendor", vendor), zap.String("description", item.Description),
				zap.String("unit_price", item.UnitPrice))
			continue
		}
		lineTotal, err := decimal.NewFromString(strings.TrimSpace(item.TotalPrice))
		if err != nil {
			log.Warn("skipping malformed voucher line item",
				zap.String("vendor", vendor), zap.String("description", item.Description),
				zap.String("total_price", item.TotalPrice))
			continue
		}

		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}

		if qty > 0 && unit.IsPositive() && lineTotal.IsPositive() {
			calculated := decimal.NewFromInt(int64(qty)).Mul(unit)
			allowed := lineTotalTolerance.Mul(decimal.NewFromInt(int64(qty)))
			if calculated.Sub(lineTotal).Abs().GreaterThanOrEqual(allowed) {
				log.Warn("voucher line total does not match quantity * unit price, keeping stated total",
					zap.String("vendor", vendor), zap.String("description", item.Description),
					zap.String("stated", lineTotal.String()), zap.String("calculated", calculated.String()))
			}
		}

		v.LineItems = append(v.LineItems, LineItem{
			Description: strings.TrimSpace(item.Description),
			Quantity:    qty,
			UnitPrice:   unit,
			TotalPrice:  lineTotal,
		})
	}

	return v, nil
}
