package usecase

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
)

// QueryUseCase 提供唯讀查詢：帳戶列表、交易歷史 (enriched)、通知、管理端 summary。
// 不持有鎖、不異動任何狀態。
type QueryUseCase struct {
	ledger   Ledger
	txlog    TransactionLog
	notifier NotificationLog
	users    UserStore
}

func NewQueryUseCase(ledger Ledger, txlog TransactionLog, notifier NotificationLog, users UserStore) *QueryUseCase {
	return &QueryUseCase{
		ledger:   ledger,
		txlog:    txlog,
		notifier: notifier,
		users:    users,
	}
}

// ListAccountsForUser 列出使用者的帳戶
func (uc *QueryUseCase) ListAccountsForUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	return uc.ledger.ListAccountsForUser(ctx, userID)
}

// ListTransactionsForUser 列出使用者任一帳戶參與的交易，時間新到舊。
//
// 對手方名稱是讀取時對「目前」帳戶/使用者狀態的 join：
// 改名後歷史交易會顯示新名稱，這是既有行為。
func (uc *QueryUseCase) ListTransactionsForUser(ctx context.Context, userID string) ([]*domain.EnrichedTransaction, error) {
	accounts, err := uc.ledger.ListAccountsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	accountIDs := make([]string, 0, len(accounts))
	for _, a := range accounts {
		accountIDs = append(accountIDs, a.AccountID)
	}

	trans, err := uc.txlog.ListForAccounts(ctx, accountIDs)
	if err != nil {
		return nil, err
	}

	enriched := make([]*domain.EnrichedTransaction, 0, len(trans))
	for _, t := range trans {
		e := &domain.EnrichedTransaction{Transaction: *t}
		if acc := uc.lookupAccount(ctx, t.FromAccountID); acc != nil {
			e.FromAccountName = acc.AccountName
		}
		if acc := uc.lookupAccount(ctx, t.ToAccountID); acc != nil {
			e.ToAccountName = acc.AccountName
		}
		if u := uc.lookupUser(ctx, t.FromUserID); u != nil {
			e.FromUserName = u.FullName()
		} else {
			e.FromUserName = t.RecipientName
		}
		if u := uc.lookupUser(ctx, t.ToUserID); u != nil {
			e.ToUserName = u.FullName()
		} else {
			e.ToUserName = t.RecipientName
		}
		enriched = append(enriched, e)
	}
	return enriched, nil
}

func (uc *QueryUseCase) lookupAccount(ctx context.Context, accountID string) *domain.Account {
	if accountID == "" {
		return nil
	}
	acc, err := uc.ledger.GetAccount(ctx, accountID)
	if err != nil {
		return nil
	}
	return acc
}

func (uc *QueryUseCase) lookupUser(ctx context.Context, userID string) *domain.User {
	if userID == "" {
		return nil
	}
	u, err := uc.users.Get(ctx, userID)
	if err != nil {
		return nil
	}
	return u
}

// AccountVerification 轉帳前的收款帳號確認結果
type AccountVerification struct {
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	UserName      string `json:"userName"`
	AccountID     string `json:"accountId"`
	UserID        string `json:"userId"`
}

// VerifyAccount 以帳號查詢收款方顯示資訊
func (uc *QueryUseCase) VerifyAccount(ctx context.Context, accountNumber string) (*AccountVerification, error) {
	account, err := uc.ledger.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	userName := "Unknown"
	if u := uc.lookupUser(ctx, account.UserID); u != nil {
		userName = u.FullName()
	}
	return &AccountVerification{
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		UserName:      userName,
		AccountID:     account.AccountID,
		UserID:        account.UserID,
	}, nil
}

// AccountsSummary 管理端總覽
type AccountsSummary struct {
	TotalBalance      decimal.Decimal `json:"totalBalance"`
	TotalTransactions int             `json:"totalTransactions"`
	TotalAccounts     int             `json:"totalAccounts"`
}

// Summary 回傳全系統餘額總和、交易筆數、帳戶數
func (uc *QueryUseCase) Summary(ctx context.Context) (*AccountsSummary, error) {
	total, count, err := uc.ledger.TotalBalance(ctx)
	if err != nil {
		return nil, err
	}
	tranCount, err := uc.txlog.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &AccountsSummary{
		TotalBalance:      total,
		TotalTransactions: tranCount,
		TotalAccounts:     count,
	}, nil
}

// ListNotifications 列出使用者通知，時間新到舊
func (uc *QueryUseCase) ListNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return uc.notifier.ListForUser(ctx, userID)
}

// MarkNotificationRead 標記已讀；找不到時為 no-op
func (uc *QueryUseCase) MarkNotificationRead(ctx context.Context, notificationID string) error {
	return uc.notifier.MarkRead(ctx, notificationID)
}

// UnreadCount 未讀通知數
func (uc *QueryUseCase) UnreadCount(ctx context.Context, userID string) (int, error) {
	return uc.notifier.UnreadCount(ctx, userID)
}

// IsNotFound 判斷是否為「資源不存在」類錯誤 (adapter 對應 404 用)
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrUserNotFound)
}
