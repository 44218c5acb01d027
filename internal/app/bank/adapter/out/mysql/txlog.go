package mysql

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
	"github.com/JoeShih716/go-bank-core/pkg/mysql"
)

// sqlTransaction 對應資料庫的 transactions 表
type sqlTransaction struct {
	ID                     int64           `gorm:"primaryKey;autoIncrement"`
	TransactionID          string          `gorm:"uniqueIndex;size:32"`
	FromAccountID          string          `gorm:"index;size:32"`
	ToAccountID            string          `gorm:"index;size:32"`
	FromUserID             string          `gorm:"size:32"`
	ToUserID               string          `gorm:"size:32"`
	Amount                 decimal.Decimal `gorm:"type:decimal(15,2)"`
	Type                   string          `gorm:"size:16"`
	Description            string          `gorm:"size:255"`
	RecipientName          string          `gorm:"size:64"`
	RecipientAccountNumber string          `gorm:"size:16"`
	Status                 string          `gorm:"size:16"`
	Timestamp              time.Time       `gorm:"index"`
}

func (*sqlTransaction) TableName() string {
	return "transactions"
}

// MySQLTransactionLog 資料庫實作的交易紀錄
type MySQLTransactionLog struct {
	client *mysql.Client
}

func NewMySQLTransactionLog(client *mysql.Client) *MySQLTransactionLog {
	return &MySQLTransactionLog{client: client}
}

// Record 追加一筆交易
func (l *MySQLTransactionLog) Record(ctx context.Context, tran *domain.Transaction) (*domain.Transaction, error) {
	row := sqlTransaction{
		TransactionID:          tran.TransactionID,
		FromAccountID:          tran.FromAccountID,
		ToAccountID:            tran.ToAccountID,
		FromUserID:             tran.FromUserID,
		ToUserID:               tran.ToUserID,
		Amount:                 tran.Amount,
		Type:                   string(tran.Type),
		Description:            tran.Description,
		RecipientName:          tran.RecipientName,
		RecipientAccountNumber: tran.RecipientAccountNumber,
		Status:                 tran.Status,
		Timestamp:              tran.Timestamp,
	}
	if err := l.client.DB().WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	cp := *tran
	return &cp, nil
}

// ListForAccounts 列出任一指定帳戶作為來源或目標的交易，時間新到舊
func (l *MySQLTransactionLog) ListForAccounts(ctx context.Context, accountIDs []string) ([]*domain.Transaction, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	var rows []sqlTransaction
	err := l.client.DB().WithContext(ctx).
		Where("from_account_id IN ? OR to_account_id IN ?", accountIDs, accountIDs).
		Order("timestamp DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}

	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		r := rows[i]
		out = append(out, &domain.Transaction{
			TransactionID:          r.TransactionID,
			FromAccountID:          r.FromAccountID,
			ToAccountID:            r.ToAccountID,
			FromUserID:             r.FromUserID,
			ToUserID:               r.ToUserID,
			Amount:                 r.Amount,
			Type:                   domain.TransactionType(r.Type),
			Description:            r.Description,
			RecipientName:          r.RecipientName,
			RecipientAccountNumber: r.RecipientAccountNumber,
			Status:                 r.Status,
			Timestamp:              r.Timestamp,
		})
	}
	return out, nil
}

// Count 交易總筆數
func (l *MySQLTransactionLog) Count(ctx context.Context) (int, error) {
	var count int64
	if err := l.client.DB().WithContext(ctx).Model(&sqlTransaction{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
	return int(count), nil
}

var _ usecase.TransactionLog = (*MySQLTransactionLog)(nil)
