package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
)

// mutationRequest 異動請求包裝channel，讓呼叫端可以等待結果
type mutationRequest struct {
	Run    func() error
	Result chan error // 呼叫端等這個 channel
}

// SerialLedger 是一個以單一輸送帶序列化所有異動的帳本 (Level 2)。
//
// 所有異動送進 channel，由唯一的 run loop 逐筆執行，整個帳本同時間
// 最多一個 mutator；讀取只在索引裝回的瞬間短暫持讀鎖，不會被排隊中
// 的異動阻塞。落盤語義與 MutexLedger 相同：寫檔失敗不裝回。
type SerialLedger struct {
	// indexMu 只保護 map 的讀取與裝回；異動排序由 run loop 保證
	indexMu  sync.RWMutex
	accounts map[string]*domain.Account
	byNumber map[string]*domain.Account
	order    []string
	store    *jsonstore.Collection[domain.Account]

	// 輸送帶 負責接收異動
	mutationChan chan *mutationRequest
	// Pool 減少 GC 壓力
	requestPool sync.Pool
}

// NewSerialLedger 從集合檔載入帳戶並建立帳本。
// 呼叫端需在使用前呼叫 Start 啟動 run loop。
func NewSerialLedger(store *jsonstore.Collection[domain.Account]) (*SerialLedger, error) {
	ledger := &SerialLedger{
		accounts:     make(map[string]*domain.Account),
		byNumber:     make(map[string]*domain.Account),
		store:        store,
		mutationChan: make(chan *mutationRequest, 1000), // Buffer 1000
		requestPool: sync.Pool{
			New: func() interface{} {
				return &mutationRequest{
					Result: make(chan error, 1),
				}
			},
		},
	}
	if store != nil {
		items, err := store.Load()
		if err != nil {
			return nil, err
		}
		for i := range items {
			a := items[i]
			ledger.accounts[a.AccountID] = &a
			ledger.byNumber[a.AccountNumber] = &a
			ledger.order = append(ledger.order, a.AccountID)
		}
	}
	return ledger, nil
}

// Start 啟動核心引擎 (非同步)
func (l *SerialLedger) Start(ctx context.Context) {
	go l.run(ctx)
}

func (l *SerialLedger) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			// 收到關閉信號，把剩下的異動處理完
			l.drain()
			return
		case req := <-l.mutationChan:
			req.Result <- req.Run()
		}
	}
}

func (l *SerialLedger) drain() {
	for {
		select {
		case req := <-l.mutationChan:
			req.Result <- req.Run()
		default:
			return
		}
	}
}

// submit 把異動放入輸送帶並等待結果 (使用 sync.Pool 減少 GC)
func (l *SerialLedger) submit(run func() error) error {
	req := l.requestPool.Get().(*mutationRequest)
	req.Run = run
	// 清空 Channel (理論上應該是空的，保險起見)
	select {
	case <-req.Result:
	default:
	}

	l.mutationChan <- req
	err := <-req.Result
	l.requestPool.Put(req)
	return err
}

// GetAccount 以帳戶 ID 取得快照
func (l *SerialLedger) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	l.indexMu.RLock()
	defer l.indexMu.RUnlock()
	account, ok := l.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// GetAccountByNumber 以帳號取得快照
func (l *SerialLedger) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	l.indexMu.RLock()
	defer l.indexMu.RUnlock()
	account, ok := l.byNumber[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// ListAccountsForUser 列出使用者的帳戶 (依建立順序)
func (l *SerialLedger) ListAccountsForUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	l.indexMu.RLock()
	defer l.indexMu.RUnlock()
	out := make([]*domain.Account, 0, 2)
	for _, id := range l.order {
		if a := l.accounts[id]; a.UserID == userID {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

// CreateAccount 建立帳戶
func (l *SerialLedger) CreateAccount(ctx context.Context, account *domain.Account) error {
	cp := account.Clone()
	return l.submit(func() error {
		if _, ok := l.accounts[cp.AccountID]; ok {
			return domain.ErrAccountAlreadyExists
		}
		if _, ok := l.byNumber[cp.AccountNumber]; ok {
			return domain.ErrAccountAlreadyExists
		}
		if err := l.flush(cp); err != nil {
			return err
		}
		l.install(cp)
		return nil
	})
}

// ApplyTransfer 原子地執行「扣來源、入目標」
func (l *SerialLedger) ApplyTransfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (*domain.Account, *domain.Account, error) {
	if amount.Sign() <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	if toAccountID != "" && fromAccountID == toAccountID {
		return nil, nil, domain.ErrSameAccount
	}

	var updatedFrom, updatedTo *domain.Account
	err := l.submit(func() error {
		from, ok := l.accounts[fromAccountID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		var to *domain.Account
		if toAccountID != "" {
			if to, ok = l.accounts[toAccountID]; !ok {
				return domain.ErrAccountNotFound
			}
		}

		fromCopy := from.Clone()
		if err := fromCopy.Debit(amount); err != nil {
			return err
		}
		var toCopy *domain.Account
		if to != nil {
			toCopy = to.Clone()
			if err := toCopy.Credit(amount); err != nil {
				return err
			}
		}

		if err := l.flush(fromCopy, toCopy); err != nil {
			return err
		}
		l.install(fromCopy)
		updatedFrom = fromCopy.Clone()
		if toCopy != nil {
			l.install(toCopy)
			updatedTo = toCopy.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updatedFrom, updatedTo, nil
}

// AdjustBalance 調整單一帳戶餘額
func (l *SerialLedger) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*domain.Account, error) {
	if delta.Sign() == 0 {
		return nil, domain.ErrInvalidAmount
	}

	var updated *domain.Account
	err := l.submit(func() error {
		account, ok := l.accounts[accountID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		cp := account.Clone()
		var err error
		if delta.Sign() > 0 {
			err = cp.Credit(delta)
		} else {
			err = cp.Debit(delta.Neg())
		}
		if err != nil {
			return err
		}
		if err := l.flush(cp); err != nil {
			return err
		}
		l.install(cp)
		updated = cp.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// TotalBalance 全系統餘額總和與帳戶數
func (l *SerialLedger) TotalBalance(ctx context.Context) (decimal.Decimal, int, error) {
	l.indexMu.RLock()
	defer l.indexMu.RUnlock()
	total := decimal.Zero
	for _, a := range l.accounts {
		total = total.Add(a.Balance)
	}
	return total, len(l.accounts), nil
}

// install 把異動後的拷貝裝回索引。只會在 run loop 內被呼叫。
func (l *SerialLedger) install(a *domain.Account) {
	l.indexMu.Lock()
	defer l.indexMu.Unlock()
	if _, ok := l.accounts[a.AccountID]; !ok {
		l.order = append(l.order, a.AccountID)
	}
	l.accounts[a.AccountID] = a
	l.byNumber[a.AccountNumber] = a
}

// flush 以 override 取代對應帳戶後整檔寫回。只會在 run loop 內被呼叫，
// 此時索引不會有其他 mutator，讀 map 不需要鎖。
func (l *SerialLedger) flush(overrides ...*domain.Account) error {
	if l.store == nil {
		return nil
	}

	ov := make(map[string]*domain.Account, len(overrides))
	for _, a := range overrides {
		if a != nil {
			ov[a.AccountID] = a
		}
	}
	snapshot := make([]domain.Account, 0, len(l.order)+len(ov))
	for _, id := range l.order {
		if a, ok := ov[id]; ok {
			snapshot = append(snapshot, *a)
			delete(ov, id)
			continue
		}
		snapshot = append(snapshot, *l.accounts[id])
	}
	for _, a := range overrides {
		if a == nil {
			continue
		}
		if _, pending := ov[a.AccountID]; pending {
			snapshot = append(snapshot, *a)
		}
	}

	if err := l.store.Save(snapshot); err != nil {
		return fmt.Errorf("%w: flushing accounts: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

var _ usecase.Ledger = (*SerialLedger)(nil)
