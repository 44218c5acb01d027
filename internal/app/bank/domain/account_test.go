package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newAccount(balance string) *Account {
	return &Account{
		AccountID:        "ACC1",
		UserID:           "USR1",
		AccountNumber:    "1000000001",
		AccountName:      "Checking Account",
		Type:             AccountTypeChecking,
		Balance:          dec(balance),
		AvailableBalance: dec(balance),
		Currency:         "USD",
		Status:           "active",
	}
}

func TestDebit(t *testing.T) {
	a := newAccount("100.00")
	require.NoError(t, a.Debit(dec("30.50")))
	assert.True(t, a.Balance.Equal(dec("69.50")), "balance=%s", a.Balance)
	// AvailableBalance 永遠與 Balance 同步
	assert.True(t, a.AvailableBalance.Equal(a.Balance))
}

func TestDebitInsufficient(t *testing.T) {
	a := newAccount("10.00")
	err := a.Debit(dec("10.01"))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	// 失敗時餘額不變
	assert.True(t, a.Balance.Equal(dec("10.00")))
	assert.True(t, a.AvailableBalance.Equal(dec("10.00")))
}

func TestDebitExactBalance(t *testing.T) {
	a := newAccount("10.00")
	require.NoError(t, a.Debit(dec("10.00")))
	assert.True(t, a.Balance.IsZero())
}

func TestDebitRejectsNonPositive(t *testing.T) {
	a := newAccount("10.00")
	assert.ErrorIs(t, a.Debit(decimal.Zero), ErrInvalidAmount)
	assert.ErrorIs(t, a.Debit(dec("-1")), ErrInvalidAmount)
	assert.ErrorIs(t, a.Credit(decimal.Zero), ErrInvalidAmount)
}

func TestMutationRoundsPerStep(t *testing.T) {
	// 每一步都捨入到分 (既有行為)，不是只在顯示時捨入
	a := newAccount("0.00")
	require.NoError(t, a.Credit(dec("0.005")))
	assert.True(t, a.Balance.Equal(dec("0.01")), "balance=%s", a.Balance)

	b := newAccount("10.00")
	require.NoError(t, b.Debit(dec("0.004")))
	assert.True(t, b.Balance.Equal(dec("10.00")), "balance=%s", b.Balance)
}

func TestClone(t *testing.T) {
	a := newAccount("5.00")
	cp := a.Clone()
	require.NoError(t, cp.Credit(dec("1.00")))
	// 拷貝的異動不影響原本
	assert.True(t, a.Balance.Equal(dec("5.00")))
	assert.True(t, cp.Balance.Equal(dec("6.00")))
}
