package mysql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-core/pkg/mysql"
)

// sqlAccount 對應資料庫的 accounts 表
type sqlAccount struct {
	AccountID        string          `gorm:"primaryKey;size:32"`
	UserID           string          `gorm:"index;size:32"`
	AccountNumber    string          `gorm:"uniqueIndex;size:16"`
	AccountName      string          `gorm:"size:64"`
	Type             string          `gorm:"size:16"`
	Balance          decimal.Decimal `gorm:"type:decimal(15,2)"`
	AvailableBalance decimal.Decimal `gorm:"type:decimal(15,2)"`
	Currency         string          `gorm:"size:8"`
	CreatedAt        time.Time
	Status           string `gorm:"size:16"`
	Icon             string `gorm:"size:8"`
}

func (*sqlAccount) TableName() string {
	return "accounts"
}

func (r *sqlAccount) toDomain() *domain.Account {
	return &domain.Account{
		AccountID:        r.AccountID,
		UserID:           r.UserID,
		AccountNumber:    r.AccountNumber,
		AccountName:      r.AccountName,
		Type:             domain.AccountType(r.Type),
		Balance:          r.Balance,
		AvailableBalance: r.AvailableBalance,
		Currency:         r.Currency,
		CreatedAt:        r.CreatedAt,
		Status:           r.Status,
		Icon:             r.Icon,
	}
}

func fromDomain(a *domain.Account) *sqlAccount {
	return &sqlAccount{
		AccountID:        a.AccountID,
		UserID:           a.UserID,
		AccountNumber:    a.AccountNumber,
		AccountName:      a.AccountName,
		Type:             string(a.Type),
		Balance:          a.Balance,
		AvailableBalance: a.AvailableBalance,
		Currency:         a.Currency,
		CreatedAt:        a.CreatedAt,
		Status:           a.Status,
		Icon:             a.Icon,
	}
}

// MySQLLedger 是資料庫實作的帳本 (Level 0)：
// 以 SELECT ... FOR UPDATE 悲觀鎖住涉及的帳戶列，鎖定順序依帳戶 ID
// 遞增排序以避免死鎖，餘額檢查與異動都在同一個 DB Transaction 內完成。
type MySQLLedger struct {
	client *mysql.Client
}

func NewMySQLLedger(client *mysql.Client) *MySQLLedger {
	return &MySQLLedger{client: client}
}

// Migrate 建立資料表 (啟動時呼叫一次)
func (l *MySQLLedger) Migrate() error {
	return l.client.DB().AutoMigrate(&sqlAccount{}, &sqlTransaction{})
}

// GetAccount 以帳戶 ID 取得帳戶
func (l *MySQLLedger) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	var row sqlAccount
	err := l.client.DB().WithContext(ctx).Where("account_id = ?", accountID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return row.toDomain(), nil
}

// GetAccountByNumber 以帳號取得帳戶
func (l *MySQLLedger) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	var row sqlAccount
	err := l.client.DB().WithContext(ctx).Where("account_number = ?", accountNumber).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return row.toDomain(), nil
}

// ListAccountsForUser 列出使用者的帳戶
func (l *MySQLLedger) ListAccountsForUser(ctx context.Context, userID string) ([]*domain.Account, error) {
	var rows []sqlAccount
	err := l.client.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at, account_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	out := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, nil
}

// CreateAccount 建立帳戶
func (l *MySQLLedger) CreateAccount(ctx context.Context, account *domain.Account) error {
	err := l.client.DB().WithContext(ctx).Create(fromDomain(account)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAccountAlreadyExists
		}
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return nil
}

// ApplyTransfer 原子地執行「扣來源、入目標」
func (l *MySQLLedger) ApplyTransfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal) (*domain.Account, *domain.Account, error) {
	if amount.Sign() <= 0 {
		return nil, nil, domain.ErrInvalidAmount
	}
	if toAccountID != "" && fromAccountID == toAccountID {
		return nil, nil, domain.ErrSameAccount
	}

	// 鎖定順序：帳戶 ID 遞增，避免兩筆反向轉帳互相等待
	lockIDs := []string{fromAccountID}
	if toAccountID != "" {
		lockIDs = append(lockIDs, toAccountID)
		sort.Strings(lockIDs)
	}

	var updatedFrom, updatedTo *domain.Account
	err := l.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []sqlAccount
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("account_id IN ?", lockIDs).
			Find(&rows).Error; err != nil {
			return err
		}
		byID := make(map[string]*sqlAccount, len(rows))
		for i := range rows {
			byID[rows[i].AccountID] = &rows[i]
		}

		from, ok := byID[fromAccountID]
		if !ok {
			return domain.ErrAccountNotFound
		}
		var to *sqlAccount
		if toAccountID != "" {
			if to, ok = byID[toAccountID]; !ok {
				return domain.ErrAccountNotFound
			}
		}

		if from.Balance.LessThan(amount) {
			return domain.ErrInsufficientFunds
		}
		from.Balance = domain.RoundCents(from.Balance.Sub(amount))
		from.AvailableBalance = domain.RoundCents(from.AvailableBalance.Sub(amount))
		if to != nil {
			to.Balance = domain.RoundCents(to.Balance.Add(amount))
			to.AvailableBalance = domain.RoundCents(to.AvailableBalance.Add(amount))
		}

		for i := range rows {
			if err := tx.Save(&rows[i]).Error; err != nil {
				return err
			}
		}
		updatedFrom = from.toDomain()
		if to != nil {
			updatedTo = to.toDomain()
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return updatedFrom, updatedTo, nil
}

// AdjustBalance 調整單一帳戶餘額；delta 為負時檢查餘額
func (l *MySQLLedger) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (*domain.Account, error) {
	if delta.Sign() == 0 {
		return nil, domain.ErrInvalidAmount
	}

	var updated *domain.Account
	err := l.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sqlAccount
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("account_id = ?", accountID).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrAccountNotFound
		}
		if err != nil {
			return err
		}

		if delta.Sign() < 0 && row.Balance.LessThan(delta.Neg()) {
			return domain.ErrInsufficientFunds
		}
		row.Balance = domain.RoundCents(row.Balance.Add(delta))
		row.AvailableBalance = domain.RoundCents(row.AvailableBalance.Add(delta))

		if err := tx.Save(&row).Error; err != nil {
			return err
		}
		updated = row.toDomain()
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) || errors.Is(err, domain.ErrInsufficientFunds) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return updated, nil
}

// TotalBalance 全系統餘額總和與帳戶數
func (l *MySQLLedger) TotalBalance(ctx context.Context) (decimal.Decimal, int, error) {
	var rows []sqlAccount
	if err := l.client.DB().WithContext(ctx).Find(&rows).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	total := decimal.Zero
	for i := range rows {
		total = total.Add(rows[i].Balance)
	}
	return total, len(rows), nil
}

var _ usecase.Ledger = (*MySQLLedger)(nil)
