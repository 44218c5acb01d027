package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/pkg/ident"
)

// now 可在測試中替換
var now = time.Now

// refEntry 佔住一個 RefID。第一個請求執行異動並在完成時 close done；
// 後到的同 RefID 請求等 done 後直接取用結果。
type refEntry struct {
	done chan struct{}
	tran *domain.Transaction
	err  error
}

// TransferUseCase 是唯一會異動帳本的進入點。
// 流程：Validating -> Authorizing (條件式) -> Mutating -> Recording -> Notifying。
// 任何在 Mutating 之前的失敗都不會留下交易或通知。
type TransferUseCase struct {
	ledger   Ledger
	txlog    TransactionLog
	notifier NotificationLog
	users    UserStore

	// 已處理與處理中的交易 (RefID -> 結果)。
	// RefID 在異動前就被佔住，同一 RefID 同時間最多一個 mutator；
	// 重送不會再次異動帳本，直接回傳原交易。
	// 冪等視窗為行程存活期間：不落盤，重啟後同一 RefID 會重新執行。
	mu        sync.Mutex
	processed map[uuid.UUID]*refEntry
}

func NewTransferUseCase(ledger Ledger, txlog TransactionLog, notifier NotificationLog, users UserStore) *TransferUseCase {
	return &TransferUseCase{
		ledger:    ledger,
		txlog:     txlog,
		notifier:  notifier,
		users:     users,
		processed: make(map[uuid.UUID]*refEntry),
	}
}

// TransferRequest 由外層 (HTTP adapter) 驗完基本格式後送進來的轉帳請求
type TransferRequest struct {
	FromAccountID   string
	ToAccountNumber string
	Amount          decimal.Decimal
	Type            domain.TransactionType
	Description     string
	// AuthCode 為 nil 代表呼叫端未提供驗證碼
	AuthCode *string
	// RefID 可選的冪等識別碼；uuid.Nil 代表不使用
	RefID uuid.UUID
}

// CreateTransfer 執行一筆轉帳並回傳完成的交易。
//
// 目的帳號 (ToAccountNumber) 可為空：代表對外 (Zelle 式) 轉帳，
// 金額視為離開本系統，只對來源扣款。
func (uc *TransferUseCase) CreateTransfer(ctx context.Context, req TransferRequest) (tran *domain.Transaction, err error) {
	// 1. Validating
	if req.FromAccountID == "" || req.Amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	amount := domain.RoundCents(req.Amount)
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	fromAccount, err := uc.ledger.GetAccount(ctx, req.FromAccountID)
	if err != nil {
		return nil, err
	}

	var toAccount *domain.Account
	if req.ToAccountNumber != "" {
		toAccount, err = uc.ledger.GetAccountByNumber(ctx, req.ToAccountNumber)
		if err != nil {
			return nil, err
		}
		if toAccount.AccountID == fromAccount.AccountID {
			return nil, domain.ErrSameAccount
		}
	}

	// 2. Authorizing (條件式)
	// 使用者啟用 Auth Verification 時，必須帶上相符的驗證碼才能繼續。
	// 逐字相等比較，無雜湊、無次數限制、無過期 (既有契約)。
	fromUser, userErr := uc.users.Get(ctx, fromAccount.UserID)
	if userErr == nil && fromUser.AuthVerification.Enabled {
		if req.AuthCode == nil {
			return nil, domain.ErrAuthRequired
		}
		if *req.AuthCode != fromUser.AuthVerification.AuthCode {
			return nil, domain.ErrAuthCodeMismatch
		}
	}

	// 冪等保護：先佔住 RefID 再異動。搶到的請求往下執行；
	// 沒搶到的等第一個請求完成後取用同一份結果，不會重複扣款。
	if req.RefID != uuid.Nil {
		uc.mu.Lock()
		if prev, ok := uc.processed[req.RefID]; ok {
			uc.mu.Unlock()
			<-prev.done
			return prev.tran, prev.err
		}
		entry := &refEntry{done: make(chan struct{})}
		uc.processed[req.RefID] = entry
		uc.mu.Unlock()

		defer func() {
			entry.tran, entry.err = tran, err
			if err != nil {
				// 失敗的 RefID 釋放掉，之後重送可以重新執行
				uc.mu.Lock()
				delete(uc.processed, req.RefID)
				uc.mu.Unlock()
			}
			close(entry.done)
		}()
	}

	// 3. Mutating：失敗時帳本不變，也不會有交易或通知
	toAccountID := ""
	if toAccount != nil {
		toAccountID = toAccount.AccountID
	}
	_, updatedTo, err := uc.ledger.ApplyTransfer(ctx, fromAccount.AccountID, toAccountID, amount)
	if err != nil {
		return nil, err
	}

	// 4. Recording
	tranType := req.Type
	if tranType == "" {
		tranType = domain.TransactionTypeTransfer
	}
	recipientName := ""
	toUserID := ""
	if updatedTo != nil {
		toUserID = updatedTo.UserID
	} else {
		recipientName = "External"
	}
	tran = &domain.Transaction{
		TransactionID:          ident.NewTransactionID(),
		FromAccountID:          fromAccount.AccountID,
		ToAccountID:            toAccountID,
		FromUserID:             fromAccount.UserID,
		ToUserID:               toUserID,
		Amount:                 amount,
		Type:                   tranType,
		Description:            req.Description,
		RecipientName:          recipientName,
		RecipientAccountNumber: req.ToAccountNumber,
		Status:                 "completed",
		Timestamp:              now(),
	}
	if _, err := uc.txlog.Record(ctx, tran); err != nil {
		// 帳本已落盤，交易紀錄寫不進去只能往上報 (無補償交易)
		return nil, fmt.Errorf("recording transaction: %w", err)
	}

	// 5. Notifying
	toName := "external account"
	if updatedTo != nil {
		toName = updatedTo.AccountName
	}
	if _, err := uc.notifier.Notify(ctx, fromAccount.UserID,
		"Money Sent",
		fmt.Sprintf("You sent $%s to %s", amount.StringFixed(2), toName),
		domain.NotificationTypeDebit,
	); err != nil {
		return nil, fmt.Errorf("notifying sender: %w", err)
	}
	if updatedTo != nil {
		fromName := ""
		if userErr == nil {
			fromName = fromUser.FullName()
		}
		if _, err := uc.notifier.Notify(ctx, updatedTo.UserID,
			"Money Received",
			fmt.Sprintf("You received $%s from %s", amount.StringFixed(2), fromName),
			domain.NotificationTypeCredit,
		); err != nil {
			return nil, fmt.Errorf("notifying recipient: %w", err)
		}
	}

	return tran, nil
}

// AdminFund 管理員入金：無來源帳戶，不經過 Auth Verification。
// 回傳入金後的帳戶快照。
func (uc *TransferUseCase) AdminFund(ctx context.Context, accountNumber string, amount decimal.Decimal, description string) (*domain.Account, error) {
	if accountNumber == "" || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	amount = domain.RoundCents(amount)
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := uc.ledger.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	updated, err := uc.ledger.AdjustBalance(ctx, account.AccountID, amount)
	if err != nil {
		return nil, err
	}

	if description == "" {
		description = "Admin funding"
	}
	tran := &domain.Transaction{
		TransactionID: ident.NewTransactionID(),
		ToAccountID:   updated.AccountID,
		FromUserID:    domain.AdminUserID,
		ToUserID:      updated.UserID,
		Amount:        amount,
		Type:          domain.TransactionTypeAdminFunding,
		Description:   description,
		Status:        "completed",
		Timestamp:     now(),
	}
	if _, err := uc.txlog.Record(ctx, tran); err != nil {
		return nil, fmt.Errorf("recording transaction: %w", err)
	}

	if _, err := uc.notifier.Notify(ctx, updated.UserID,
		"Account Funded",
		fmt.Sprintf("Your account has been funded with $%s by admin", amount.StringFixed(2)),
		domain.NotificationTypeCredit,
	); err != nil {
		return nil, fmt.Errorf("notifying owner: %w", err)
	}
	return updated, nil
}

// AdminDebit 管理員扣款：無目標帳戶，不經過 Auth Verification。
// 餘額不足時失敗且不留任何紀錄。回傳扣款後的帳戶快照。
func (uc *TransferUseCase) AdminDebit(ctx context.Context, accountNumber string, amount decimal.Decimal, note string) (*domain.Account, error) {
	if accountNumber == "" || amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	amount = domain.RoundCents(amount)
	if amount.Sign() <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := uc.ledger.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	updated, err := uc.ledger.AdjustBalance(ctx, account.AccountID, amount.Neg())
	if err != nil {
		return nil, err
	}

	description := note
	if description == "" {
		description = "Admin debit"
	}
	tran := &domain.Transaction{
		TransactionID: ident.NewTransactionID(),
		FromAccountID: updated.AccountID,
		FromUserID:    updated.UserID,
		ToUserID:      domain.AdminUserID,
		Amount:        amount,
		Type:          domain.TransactionTypeAdminDebit,
		Description:   description,
		Status:        "completed",
		Timestamp:     now(),
	}
	if _, err := uc.txlog.Record(ctx, tran); err != nil {
		return nil, fmt.Errorf("recording transaction: %w", err)
	}

	message := fmt.Sprintf("$%s has been debited from your account", amount.StringFixed(2))
	if note != "" {
		message += ": " + note
	}
	if _, err := uc.notifier.Notify(ctx, updated.UserID,
		"Account Debited",
		message,
		domain.NotificationTypeDebit,
	); err != nil {
		return nil, fmt.Errorf("notifying owner: %w", err)
	}
	return updated, nil
}
