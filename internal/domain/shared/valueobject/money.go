package valueobject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

// Currencies accepted by the Paystack gateway
const (
	NGN Currency = "NGN" // Nigerian Naira (default)
	GHS Currency = "GHS" // Ghanaian Cedi
	ZAR Currency = "ZAR" // South African Rand
	KES Currency = "KES" // Kenyan Shilling
	USD Currency = "USD" // US Dollar
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = NGN

// minorUnitsPerMajor is the subunit factor (kobo, pesewas, cents) for all supported currencies
var minorUnitsPerMajor = decimal.NewFromInt(100)

// ParseCurrency normalizes and validates a currency code
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	switch c {
	case NGN, GHS, ZAR, KES, USD:
		return c, nil
	case "":
		return DefaultCurrency, nil
	}
	return "", fmt.Errorf("unsupported currency: %s", code)
}

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{
		amount:   amount,
		currency: currency,
	}, nil
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// NewMoneyFromMinorUnits builds Money from a subunit amount such as kobo
func NewMoneyFromMinorUnits(minor int64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromInt(minor).Div(minorUnitsPerMajor), currency)
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// MinorUnits returns the amount in subunits, rounded half away from zero
func (m Money) MinorUnits() int64 {
	return m.amount.Mul(minorUnitsPerMajor).Round(0).IntPart()
}

// Equals compares amount and currency
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a human-readable representation
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
