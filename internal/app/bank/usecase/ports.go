package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
)

// Ledger 是帳務系統的出口埠：所有餘額異動都必須經過它。
//
// 實作需保證：同一帳戶同時間最多一個 mutator；讀取路徑不被異動鎖長期阻塞，
// 回傳的一律是值拷貝。異動若無法落盤，記憶體狀態必須回復原狀再回傳錯誤。
type Ledger interface {
	// GetAccount 以帳戶 ID 取得帳戶快照
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	// GetAccountByNumber 以 10 位帳號取得帳戶快照
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	// ListAccountsForUser 列出使用者的所有帳戶
	ListAccountsForUser(ctx context.Context, userID string) ([]*domain.Account, error)
	// CreateAccount 建立帳戶；ID 或帳號重複回傳 ErrAccountAlreadyExists
	CreateAccount(ctx context.Context, account *domain.Account) error
	// ApplyTransfer 原子地扣款來源並入帳目標。
	// toAccountID 為空字串代表對外轉帳，只發生扣款。
	ApplyTransfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (updatedFrom, updatedTo *domain.Account, err error)
	// AdjustBalance 調整單一帳戶餘額，delta 可正可負；負向調整會檢查餘額
	AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*domain.Account, error)
	// TotalBalance 回傳全系統餘額總和與帳戶數 (管理端 summary 用)
	TotalBalance(ctx context.Context) (decimal.Decimal, int, error)
}

// TransactionLog 交易紀錄 (append-only)
type TransactionLog interface {
	// Record 追加一筆交易；只有儲存層錯誤會失敗
	Record(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error)
	// ListForAccounts 列出任一指定帳戶作為來源或目標的交易，時間新到舊
	ListForAccounts(ctx context.Context, accountIDs []string) ([]*domain.Transaction, error)
	// Count 交易總筆數
	Count(ctx context.Context) (int, error)
}

// NotificationLog 通知紀錄
type NotificationLog interface {
	// Notify 為指定使用者追加一筆通知；不檢查使用者是否存在
	Notify(ctx context.Context, userID, title, message string, typ domain.NotificationType) (*domain.Notification, error)
	// ListForUser 列出使用者的通知，時間新到舊
	ListForUser(ctx context.Context, userID string) ([]*domain.Notification, error)
	// MarkRead 標記已讀；找不到時為 no-op
	MarkRead(ctx context.Context, notificationID string) error
	// UnreadCount 未讀數
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// UserStore 使用者資料。核心轉帳路徑只讀取，註冊/管理操作會寫入。
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
}
