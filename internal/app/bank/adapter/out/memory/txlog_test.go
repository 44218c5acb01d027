package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
)

func tran(id, from, to string, ts time.Time) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: id,
		FromAccountID: from,
		ToAccountID:   to,
		FromUserID:    "USR1",
		ToUserID:      "USR2",
		Amount:        dec("10.00"),
		Type:          domain.TransactionTypeTransfer,
		Status:        "completed",
		Timestamp:     ts,
	}
}

func TestTransactionLogListForAccounts(t *testing.T) {
	log, err := NewTransactionLog(nil)
	require.NoError(t, err)
	ctx := context.Background()

	base := time.Now()
	_, err = log.Record(ctx, tran("TRX1", "ACC1", "ACC2", base))
	require.NoError(t, err)
	_, err = log.Record(ctx, tran("TRX2", "ACC2", "ACC3", base.Add(time.Second)))
	require.NoError(t, err)
	_, err = log.Record(ctx, tran("TRX3", "ACC3", "ACC4", base.Add(2*time.Second)))
	require.NoError(t, err)

	// ACC1 只沾到第一筆
	list, err := log.ListForAccounts(ctx, []string{"ACC1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "TRX1", list[0].TransactionID)

	// ACC2 作為來源與目標各一筆，時間新到舊
	list, err = log.ListForAccounts(ctx, []string{"ACC2"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "TRX2", list[0].TransactionID)
	assert.Equal(t, "TRX1", list[1].TransactionID)

	// 重複查詢結果一致
	again, err := log.ListForAccounts(ctx, []string{"ACC2"})
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, list[0].TransactionID, again[0].TransactionID)

	count, err := log.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTransactionLogIgnoresEmptyAccountID(t *testing.T) {
	log, err := NewTransactionLog(nil)
	require.NoError(t, err)
	ctx := context.Background()

	// 管理員入金沒有來源帳戶
	funding := tran("TRX1", "", "ACC1", time.Now())
	funding.Type = domain.TransactionTypeAdminFunding
	_, err = log.Record(ctx, funding)
	require.NoError(t, err)

	// 查空字串不可撈到它
	list, err := log.ListForAccounts(ctx, []string{""})
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = log.ListForAccounts(ctx, []string{"ACC1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTransactionLogPersistence(t *testing.T) {
	dir := t.TempDir()
	store, err := jsonstore.NewCollection[domain.Transaction](dir, "transactions.json")
	require.NoError(t, err)

	log, err := NewTransactionLog(store)
	require.NoError(t, err)
	_, err = log.Record(context.Background(), tran("TRX1", "ACC1", "ACC2", time.Now()))
	require.NoError(t, err)

	reloaded, err := NewTransactionLog(store)
	require.NoError(t, err)
	count, err := reloaded.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
