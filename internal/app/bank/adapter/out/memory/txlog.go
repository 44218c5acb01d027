package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
)

// TransactionLog 交易紀錄 (append-only)。
// 紀錄不跨帳戶鎖定，但 Record 一定發生在帳本異動落盤之後 (由 usecase 保證順序)。
type TransactionLog struct {
	mu    sync.RWMutex
	trans []domain.Transaction
	store *jsonstore.Collection[domain.Transaction]
}

// NewTransactionLog 從集合檔載入既有紀錄。store 為 nil 時純記憶體運作。
func NewTransactionLog(store *jsonstore.Collection[domain.Transaction]) (*TransactionLog, error) {
	log := &TransactionLog{store: store}
	if store != nil {
		items, err := store.Load()
		if err != nil {
			return nil, err
		}
		log.trans = items
	}
	return log, nil
}

// Record 追加一筆交易。寫檔失敗時記憶體不追加，回報 ErrStorageFailure。
func (t *TransactionLog) Record(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := append(append([]domain.Transaction(nil), t.trans...), *tran)
	if t.store != nil {
		if err := t.store.Save(next); err != nil {
			return nil, fmt.Errorf("%w: flushing transactions: %v", domain.ErrStorageFailure, err)
		}
	}
	t.trans = next
	cp := *tran
	return &cp, nil
}

// ListForAccounts 列出任一指定帳戶作為來源或目標的交易，時間新到舊
func (t *TransactionLog) ListForAccounts(ctx context.Context, accountIDs []string) ([]*domain.Transaction, error) {
	ids := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		ids[id] = struct{}{}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*domain.Transaction, 0)
	for i := range t.trans {
		tr := t.trans[i]
		_, isFrom := ids[tr.FromAccountID]
		_, isTo := ids[tr.ToAccountID]
		if tr.FromAccountID != "" && isFrom || tr.ToAccountID != "" && isTo {
			cp := tr
			out = append(out, &cp)
		}
	}
	// 穩定排序：同一時間戳維持 append 順序，重複查詢結果一致
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

// Count 交易總筆數
func (t *TransactionLog) Count(ctx context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.trans), nil
}

var _ usecase.TransactionLog = (*TransactionLog)(nil)
