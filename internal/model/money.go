package model

import (
    "errors"
    "fmt"
)

// Money is an immutable currency-tagged amount.  Amounts are stored in
// minor units (cents) to avoid floating point arithmetic on prices.
// Operations between two Money values require matching currencies and
// never produce negative results; callers that need to know whether a
// subtraction would go negative must use Compare first.
//
// Fields:
//  AmountCents – amount in minor units, always >= 0.
//  Currency    – ISO 4217 three-letter code (e.g. "USD", "XAF").
type Money struct {
    AmountCents int64  // amount in cents
    Currency    string // 3-letter currency code
}

// ErrCurrencyMismatch is returned when an operation is attempted between
// two Money values with different currency codes.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrNegativeAmount is returned when a Money would be constructed with a
// negative amount, or when a subtraction would yield a negative result.
var ErrNegativeAmount = errors.New("negative amount")

// ErrInvalidCurrency is returned when the currency code is not exactly
// three letters.
var ErrInvalidCurrency = errors.New("invalid currency code")

// NewMoney validates and builds a Money.  The amount must be
// non-negative and the currency must be a three-letter code.
func NewMoney(amountCents int64, currency string) (Money, error) {
    if amountCents < 0 {
        return Money{}, ErrNegativeAmount
    }
    if len(currency) != 3 {
        return Money{}, ErrInvalidCurrency
    }
    return Money{AmountCents: amountCents, Currency: currency}, nil
}

// Add returns the sum of m and other.  Fails when currencies differ.
func (m Money) Add(other Money) (Money, error) {
    if m.Currency != other.Currency {
        return Money{}, ErrCurrencyMismatch
    }
    return Money{AmountCents: m.AmountCents + other.AmountCents, Currency: m.Currency}, nil
}

// Subtract returns m minus other.  Fails when currencies differ or the
// result would be negative.  When a negative difference is a valid
// business outcome (e.g. refund differentials) callers should use
// Compare before subtracting.
func (m Money) Subtract(other Money) (Money, error) {
    if m.Currency != other.Currency {
        return Money{}, ErrCurrencyMismatch
    }
    if m.AmountCents < other.AmountCents {
        return Money{}, ErrNegativeAmount
    }
    return Money{AmountCents: m.AmountCents - other.AmountCents, Currency: m.Currency}, nil
}

// Multiply returns m scaled by factor.  The factor must not be negative;
// it is an integer because prices in this system only ever scale by
// participant counts.
func (m Money) Multiply(factor int64) (Money, error) {
    if factor < 0 {
        return Money{}, ErrNegativeAmount
    }
    return Money{AmountCents: m.AmountCents * factor, Currency: m.Currency}, nil
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
    return m.AmountCents == 0
}

// Compare returns -1, 0 or +1 when m is less than, equal to or greater
// than other.  Fails when currencies differ.
func (m Money) Compare(other Money) (int, error) {
    if m.Currency != other.Currency {
        return 0, ErrCurrencyMismatch
    }
    switch {
    case m.AmountCents < other.AmountCents:
        return -1, nil
    case m.AmountCents > other.AmountCents:
        return 1, nil
    }
    return 0, nil
}

// Equal reports whether both amount and currency match.
func (m Money) Equal(other Money) bool {
    return m.Currency == other.Currency && m.AmountCents == other.AmountCents
}

// String renders the amount with two decimal places and the currency
// code, e.g. "125.00 USD".
func (m Money) String() string {
    return fmt.Sprintf("%d.%02d %s", m.AmountCents/100, m.AmountCents%100, m.Currency)
}
