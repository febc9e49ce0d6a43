package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewMoneyValidation(t *testing.T) {
    _, err := NewMoney(-1, "USD")
    assert.ErrorIs(t, err, ErrNegativeAmount)

    _, err = NewMoney(100, "US")
    assert.ErrorIs(t, err, ErrInvalidCurrency)

    m, err := NewMoney(0, "XAF")
    require.NoError(t, err)
    assert.True(t, m.IsZero())
}

func TestMoneyAdd(t *testing.T) {
    a := Money{AmountCents: 1500, Currency: "USD"}
    b := Money{AmountCents: 2500, Currency: "USD"}

    sum, err := a.Add(b)
    require.NoError(t, err)
    assert.Equal(t, int64(4000), sum.AmountCents)
    // Operands are untouched.
    assert.Equal(t, int64(1500), a.AmountCents)

    _, err = a.Add(Money{AmountCents: 100, Currency: "EUR"})
    assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneySubtract(t *testing.T) {
    a := Money{AmountCents: 2500, Currency: "USD"}
    b := Money{AmountCents: 1500, Currency: "USD"}

    diff, err := a.Subtract(b)
    require.NoError(t, err)
    assert.Equal(t, int64(1000), diff.AmountCents)

    _, err = b.Subtract(a)
    assert.ErrorIs(t, err, ErrNegativeAmount)

    _, err = a.Subtract(Money{AmountCents: 1, Currency: "XAF"})
    assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyMultiply(t *testing.T) {
    unit := Money{AmountCents: 25000, Currency: "USD"}

    total, err := unit.Multiply(3)
    require.NoError(t, err)
    assert.Equal(t, int64(75000), total.AmountCents)
    assert.Equal(t, "USD", total.Currency)

    zero, err := unit.Multiply(0)
    require.NoError(t, err)
    assert.True(t, zero.IsZero())

    _, err = unit.Multiply(-2)
    assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestMoneyCompare(t *testing.T) {
    small := Money{AmountCents: 100, Currency: "USD"}
    big := Money{AmountCents: 200, Currency: "USD"}

    c, err := small.Compare(big)
    require.NoError(t, err)
    assert.Equal(t, -1, c)

    c, err = big.Compare(small)
    require.NoError(t, err)
    assert.Equal(t, 1, c)

    c, err = small.Compare(small)
    require.NoError(t, err)
    assert.Equal(t, 0, c)

    _, err = small.Compare(Money{AmountCents: 100, Currency: "GBP"})
    assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestMoneyString(t *testing.T) {
    assert.Equal(t, "125.00 USD", Money{AmountCents: 12500, Currency: "USD"}.String())
    assert.Equal(t, "0.05 XAF", Money{AmountCents: 5, Currency: "XAF"}.String())
}
