package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
)

func TestNotificationLogListAndUnread(t *testing.T) {
	log, err := NewNotificationLog(nil)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := log.Notify(ctx, "USR1", "Money Sent", "You sent $10.00 to Bob", domain.NotificationTypeDebit)
	require.NoError(t, err)
	_, err = log.Notify(ctx, "USR1", "Money Received", "You received $5.00 from Carol", domain.NotificationTypeCredit)
	require.NoError(t, err)
	_, err = log.Notify(ctx, "USR2", "Money Received", "You received $10.00 from Alice", domain.NotificationTypeCredit)
	require.NoError(t, err)

	list, err := log.ListForUser(ctx, "USR1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, note := range list {
		assert.Equal(t, "USR1", note.UserID)
		assert.False(t, note.IsRead)
		assert.NotEmpty(t, note.NotificationID)
	}

	count, err := log.UnreadCount(ctx, "USR1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, log.MarkRead(ctx, first.NotificationID))
	count, err = log.UnreadCount(ctx, "USR1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// 重複標記與未知 ID 都不是錯誤
	require.NoError(t, log.MarkRead(ctx, first.NotificationID))
	require.NoError(t, log.MarkRead(ctx, "NOT_UNKNOWN"))

	// 另一個使用者不受影響
	count, err = log.UnreadCount(ctx, "USR2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotificationLogPersistence(t *testing.T) {
	dir := t.TempDir()
	store, err := jsonstore.NewCollection[domain.Notification](dir, "notifications.json")
	require.NoError(t, err)

	log, err := NewNotificationLog(store)
	require.NoError(t, err)
	note, err := log.Notify(context.Background(), "USR1", "Account Funded", "Your account has been funded with $50.00 by admin", domain.NotificationTypeCredit)
	require.NoError(t, err)
	require.NoError(t, log.MarkRead(context.Background(), note.NotificationID))

	// 重新載入後已讀狀態仍在
	reloaded, err := NewNotificationLog(store)
	require.NoError(t, err)
	list, err := reloaded.ListForUser(context.Background(), "USR1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}
