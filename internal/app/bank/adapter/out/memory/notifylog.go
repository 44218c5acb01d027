package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-core/pkg/ident"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
)

// NotificationLog 通知紀錄。追加與標記已讀都整檔寫回。
type NotificationLog struct {
	mu    sync.RWMutex
	notes []domain.Notification
	store *jsonstore.Collection[domain.Notification]
}

// NewNotificationLog 從集合檔載入既有通知。store 為 nil 時純記憶體運作。
func NewNotificationLog(store *jsonstore.Collection[domain.Notification]) (*NotificationLog, error) {
	log := &NotificationLog{store: store}
	if store != nil {
		items, err := store.Load()
		if err != nil {
			return nil, err
		}
		log.notes = items
	}
	return log, nil
}

// Notify 為指定使用者追加一筆通知。
// 不驗證 userID 是否存在：通知掛在任何給定的識別碼上 (既有行為)。
func (n *NotificationLog) Notify(ctx context.Context, userID, title, message string, typ domain.NotificationType) (*domain.Notification, error) {
	note := domain.Notification{
		NotificationID: ident.NewNotificationID(),
		UserID:         userID,
		Title:          title,
		Message:        message,
		Type:           typ,
		Timestamp:      time.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	next := append(append([]domain.Notification(nil), n.notes...), note)
	if n.store != nil {
		if err := n.store.Save(next); err != nil {
			return nil, fmt.Errorf("%w: flushing notifications: %v", domain.ErrStorageFailure, err)
		}
	}
	n.notes = next
	return &note, nil
}

// ListForUser 列出使用者的通知，時間新到舊
func (n *NotificationLog) ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*domain.Notification, 0)
	for i := range n.notes {
		if n.notes[i].UserID == userID {
			cp := n.notes[i]
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// MarkRead 標記已讀。找不到通知時不回報錯誤 (既有行為)。
func (n *NotificationLog) MarkRead(ctx context.Context, notificationID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.notes {
		if n.notes[i].NotificationID != notificationID {
			continue
		}
		if n.notes[i].IsRead {
			return nil
		}
		next := append([]domain.Notification(nil), n.notes...)
		next[i].IsRead = true
		if n.store != nil {
			if err := n.store.Save(next); err != nil {
				return fmt.Errorf("%w: flushing notifications: %v", domain.ErrStorageFailure, err)
			}
		}
		n.notes = next
		return nil
	}
	return nil
}

// UnreadCount 未讀通知數
func (n *NotificationLog) UnreadCount(ctx context.Context, userID string) (int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	count := 0
	for i := range n.notes {
		if n.notes[i].UserID == userID && !n.notes[i].IsRead {
			count++
		}
	}
	return count, nil
}

var _ usecase.NotificationLog = (*NotificationLog)(nil)
