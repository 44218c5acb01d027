package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// 帳務 JSON 檔內的金額是純數字 (非字串)，維持與既有資料檔相容
	decimal.MarshalJSONWithoutQuotes = true
}

// AccountType 帳戶類型
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

// Account 帳戶
//
// Balance 與 AvailableBalance 永遠同步變動：系統沒有圈存 (hold) 機制，
// 兩個欄位在每次異動後數值相等，但刻意保留為獨立欄位以利未來擴充。
type Account struct {
	AccountID        string          `json:"accountId"`
	UserID           string          `json:"userId"`
	AccountNumber    string          `json:"accountNumber"`
	AccountName      string          `json:"accountName"`
	Type             AccountType     `json:"type"`
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	Currency         string          `json:"currency"`
	CreatedAt        time.Time       `json:"createdAt"`
	Status           string          `json:"status"`
	Icon             string          `json:"icon"`
}

// RoundCents 金額以「每一步都四捨五入到分」的方式運算。
// 這是既有系統的觀察行為，必須逐位元保留，不可改成只在顯示時捨入。
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Debit 扣款：金額需 > 0 且不得超過餘額。
// 兩個餘額欄位同步扣減，並在每一步捨入到分。
func (a *Account) Debit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = RoundCents(a.Balance.Sub(amount))
	a.AvailableBalance = RoundCents(a.AvailableBalance.Sub(amount))
	return nil
}

// Credit 入帳：金額需 > 0。
func (a *Account) Credit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	a.Balance = RoundCents(a.Balance.Add(amount))
	a.AvailableBalance = RoundCents(a.AvailableBalance.Add(amount))
	return nil
}

// Clone 回傳帳戶的值拷貝，避免呼叫端直接改寫內部狀態
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}
