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

// MutexLedger 是一個使用 RWMutex 實現的帳本 (Level 1)。
//
// 所有異動在同一把寫鎖下序列化，天然滿足「同一帳戶同時間最多一個
// mutator」；讀取路徑只取讀鎖並回傳值拷貝。
//
// 落盤順序：先在帳戶拷貝上計算新餘額，整檔寫回成功後才把拷貝裝回
// map。寫檔失敗時記憶體保持原狀，不會出現記憶體與檔案分歧。
type MutexLedger struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account // AccountID -> Account
	byNumber map[string]*domain.Account // AccountNumber -> Account
	// order 保存載入/建立順序，讓整檔改寫後的 JSON 與既有檔案排列一致
	order []string
	store *jsonstore.Collection[domain.Account]
}

// NewMutexLedger 從集合檔載入帳戶並建立帳本。store 為 nil 時純記憶體運作 (測試用)。
func NewMutexLedger(store *jsonstore.Collection[domain.Account]) (*MutexLedger, error) {
	ledger := &MutexLedger{
		accounts: make(map[string]*domain.Account),
		byNumber: make(map[string]*domain.Account),
		store:    store,
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

// GetAccount 以帳戶 ID 取得快照
func (m *MutexLedger) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// GetAccountByNumber 以帳號取得快照
func (m *MutexLedger) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.byNumber[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account.Clone(), nil
}

// ListAccountsForUser 列出使用者的帳戶 (依建立順序)
func (m *MutexLedger) ListAccountsForUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Account, 0, 2)
	for _, id := range m.order {
		if a := m.accounts[id]; a.UserID == userID {
			out = append(out, a.Clone())
		}
	}
	return out, nil
}

// CreateAccount 建立帳戶；ID 或帳號重複回傳 ErrAccountAlreadyExists
func (m *MutexLedger) CreateAccount(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.AccountID]; ok {
		return domain.ErrAccountAlreadyExists
	}
	if _, ok := m.byNumber[account.AccountNumber]; ok {
		return domain.ErrAccountAlreadyExists
	}

	cp := account.Clone()
	if err := m.flushLocked(cp); err != nil {
		return err
	}
	m.accounts[cp.AccountID] = cp
	m.byNumber[cp.AccountNumber] = cp
	m.order = append(m.order, cp.AccountID)
	return nil
}

// ApplyTransfer 原子地執行「扣來源、入目標」。
// toAccountID 為空代表對外轉帳，只扣款。
func (m *MutexLedger) ApplyTransfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (*domain.Account, *domain.Account, error) {
	if amount.Sign() <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	if toAccountID != "" && fromAccountID == toAccountID {
		return nil, nil, domain.ErrSameAccount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	from, ok := m.accounts[fromAccountID]
	if !ok {
		return nil, nil, domain.ErrAccountNotFound
	}
	var to *domain.Account
	if toAccountID != "" {
		if to, ok = m.accounts[toAccountID]; !ok {
			return nil, nil, domain.ErrAccountNotFound
		}
	}

	// 在拷貝上計算，落盤成功才裝回
	fromCopy := from.Clone()
	if err := fromCopy.Debit(amount); err != nil {
		return nil, nil, err
	}
	var toCopy *domain.Account
	if to != nil {
		toCopy = to.Clone()
		if err := toCopy.Credit(amount); err != nil {
			return nil, nil, err
		}
	}

	if err := m.flushLocked(fromCopy, toCopy); err != nil {
		return nil, nil, err
	}

	m.install(fromCopy)
	if toCopy != nil {
		m.install(toCopy)
		return fromCopy.Clone(), toCopy.Clone(), nil
	}
	return fromCopy.Clone(), nil, nil
}

// AdjustBalance 調整單一帳戶餘額；delta 為負時檢查餘額
func (m *MutexLedger) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*domain.Account, error) {
	if delta.Sign() == 0 {
		return nil, domain.ErrInvalidAmount
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[accountID]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	cp := account.Clone()
	var err error
	if delta.Sign() > 0 {
		err = cp.Credit(delta)
	} else {
		err = cp.Debit(delta.Neg())
	}
	if err != nil {
		return nil, err
	}

	if err := m.flushLocked(cp); err != nil {
		return nil, err
	}
	m.install(cp)
	return cp.Clone(), nil
}

// TotalBalance 全系統餘額總和與帳戶數
func (m *MutexLedger) TotalBalance(ctx context.Context) (decimal.Decimal, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := decimal.Zero
	for _, a := range m.accounts {
		total = total.Add(a.Balance)
	}
	return total, len(m.accounts), nil
}

// install 把異動後的拷貝裝回兩個索引。呼叫端需持有寫鎖。
func (m *MutexLedger) install(a *domain.Account) {
	if _, ok := m.accounts[a.AccountID]; !ok {
		m.order = append(m.order, a.AccountID)
	}
	m.accounts[a.AccountID] = a
	m.byNumber[a.AccountNumber] = a
}

// flushLocked 以 override 取代對應帳戶後整檔寫回。
// 尚未存在的 override (新帳戶) 接在檔尾。呼叫端需持有寫鎖。
func (m *MutexLedger) flushLocked(overrides ...*domain.Account) error {
	if m.store == nil {
		return nil
	}

	ov := make(map[string]*domain.Account, len(overrides))
	for _, a := range overrides {
		if a != nil {
			ov[a.AccountID] = a
		}
	}
	snapshot := make([]domain.Account, 0, len(m.order)+len(ov))
	for _, id := range m.order {
		if a, ok := ov[id]; ok {
			snapshot = append(snapshot, *a)
			delete(ov, id)
			continue
		}
		snapshot = append(snapshot, *m.accounts[id])
	}
	for _, a := range overrides {
		if a == nil {
			continue
		}
		if _, pending := ov[a.AccountID]; pending {
			snapshot = append(snapshot, *a)
		}
	}

	if err := m.store.Save(snapshot); err != nil {
		return fmt.Errorf("%w: flushing accounts: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

var _ usecase.Ledger = (*MutexLedger)(nil)
