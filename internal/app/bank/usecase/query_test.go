package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
)

func TestListTransactionsForUserEnrichment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.transfers.CreateTransfer(ctx, usecase.TransferRequest{
		FromAccountID:   "ACC1",
		ToAccountNumber: "1000000002",
		Amount:          dec("10.00"),
	})
	require.NoError(t, err)

	list, err := f.queries.ListTransactionsForUser(ctx, "USR1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	e := list[0]
	assert.Equal(t, "Alice Chen", e.FromUserName)
	assert.Equal(t, "Bob Lin", e.ToUserName)
	assert.Equal(t, "Checking Account", e.FromAccountName)
	assert.Equal(t, "Checking Account", e.ToAccountName)

	// 對手方 (USR2) 也能看到同一筆
	list, err = f.queries.ListTransactionsForUser(ctx, "USR2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e.TransactionID, list[0].TransactionID)
}

func TestListTransactionsReflectCurrentNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.transfers.CreateTransfer(ctx, usecase.TransferRequest{
		FromAccountID:   "ACC2",
		ToAccountNumber: "1000000001",
		Amount:          dec("5.00"),
	})
	require.NoError(t, err)

	// 改名後歷史交易顯示新名稱 (讀取時 join)
	bob, err := f.users.Get(ctx, "USR2")
	require.NoError(t, err)
	bob.FirstName = "Robert"
	require.NoError(t, f.users.Update(ctx, bob))

	list, err := f.queries.ListTransactionsForUser(ctx, "USR1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Robert Lin", list[0].FromUserName)
}

func TestListTransactionsExternalFallsBackToRecipientName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.transfers.CreateTransfer(ctx, usecase.TransferRequest{
		FromAccountID: "ACC1",
		Amount:        dec("15.00"),
		Type:          domain.TransactionTypeZelle,
	})
	require.NoError(t, err)

	list, err := f.queries.ListTransactionsForUser(ctx, "USR1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "External", list[0].ToUserName)
	assert.Empty(t, list[0].ToAccountName)
}

func TestVerifyAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	v, err := f.queries.VerifyAccount(ctx, "1000000002")
	require.NoError(t, err)
	assert.Equal(t, "Bob Lin", v.UserName)
	assert.Equal(t, "Checking Account", v.AccountName)
	assert.Equal(t, "ACC2", v.AccountID)
	assert.Equal(t, "USR2", v.UserID)

	_, err = f.queries.VerifyAccount(ctx, "9999999999")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.True(t, usecase.IsNotFound(err))
}

func TestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.transfers.CreateTransfer(ctx, usecase.TransferRequest{
		FromAccountID:   "ACC1",
		ToAccountNumber: "1000000002",
		Amount:          dec("10.00"),
	})
	require.NoError(t, err)
	_, err = f.transfers.AdminFund(ctx, "1000000003", dec("20.00"), "")
	require.NoError(t, err)

	s, err := f.queries.Summary(ctx)
	require.NoError(t, err)
	// 100 + 50 + 30 + 20 (入金)
	assert.True(t, s.TotalBalance.Equal(dec("200.00")), "total=%s", s.TotalBalance)
	assert.Equal(t, 2, s.TotalTransactions)
	assert.Equal(t, 3, s.TotalAccounts)
}
