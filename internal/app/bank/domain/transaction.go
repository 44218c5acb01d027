package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType 交易類型
type TransactionType string

const (
	// 站內轉帳
	TransactionTypeTransfer TransactionType = "transfer"
	// 對外轉帳 (Zelle 式)：目的帳戶不在本系統，只發生扣款
	TransactionTypeZelle TransactionType = "zelle"
	// 管理員入金
	TransactionTypeAdminFunding TransactionType = "admin-funding"
	// 管理員扣款
	TransactionTypeAdminDebit TransactionType = "admin-debit"
)

// AdminUserID 管理員操作在交易紀錄中使用的哨兵身分
const AdminUserID = "admin"

// Transaction 交易紀錄，寫入後不可變 (append-only log)
//
// FromAccountID 為空代表管理員入金；ToAccountID 為空代表對外轉帳或管理員扣款。
type Transaction struct {
	TransactionID          string          `json:"transactionId"`
	FromAccountID          string          `json:"fromAccountId,omitempty"`
	ToAccountID            string          `json:"toAccountId,omitempty"`
	FromUserID             string          `json:"fromUserId"`
	ToUserID               string          `json:"toUserId,omitempty"`
	Amount                 decimal.Decimal `json:"amount"`
	Type                   TransactionType `json:"type"`
	Description            string          `json:"description"`
	RecipientName          string          `json:"recipientName,omitempty"`
	RecipientAccountNumber string          `json:"recipientAccountNumber,omitempty"`
	Status                 string          `json:"status"`
	Timestamp              time.Time       `json:"timestamp"`
}

// EnrichedTransaction 讀取時的 join 結果：交易本體加上「目前的」帳戶與使用者顯示名稱。
// 名稱不存在交易上，改名後歷史交易會顯示新名稱 (既有行為，刻意保留)。
type EnrichedTransaction struct {
	Transaction
	FromAccountName string `json:"fromAccountName,omitempty"`
	ToAccountName   string `json:"toAccountName,omitempty"`
	FromUserName    string `json:"fromUserName,omitempty"`
	ToUserName      string `json:"toUserName,omitempty"`
}
