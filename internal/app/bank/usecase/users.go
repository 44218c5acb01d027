package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/pkg/ident"
)

// 管理員靜態登入 (既有系統的後門帳號，原樣保留)
const (
	adminEmail    = "admin@bankofAmerica.com"
	adminPassword = "admin123"
)

// UserUseCase 處理註冊、登入與使用者管理。
// 這層是核心的呼叫端 (thin glue)，帳本異動仍然只走 TransferUseCase。
type UserUseCase struct {
	users  UserStore
	ledger Ledger
}

func NewUserUseCase(users UserStore, ledger Ledger) *UserUseCase {
	return &UserUseCase{users: users, ledger: ledger}
}

// HashPassword 單次無鹽 SHA-256 (hex)。
// 既有系統的弱契約，原樣重現；不是建議的密碼儲存方式。
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// newToken 回傳 32 bytes 亂數 hex，當作登入 token
func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RegisterParams 註冊參數，外層已確認欄位皆有值
type RegisterParams struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
}

// AuthResult 註冊/登入結果
type AuthResult struct {
	Token   string
	UserID  string
	IsAdmin bool
	User    *domain.User
}

// Register 建立使用者，並附帶兩個零餘額的預設帳戶 (Checking / Savings)
func (uc *UserUseCase) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if _, err := uc.users.GetByEmail(ctx, params.Email); err == nil {
		return nil, domain.ErrEmailTaken
	}

	user := &domain.User{
		UserID:       ident.NewUserID(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		Phone:        params.Phone,
		PasswordHash: HashPassword(params.Password),
		Status:       "successful",
		CreatedAt:    now(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	defaults := []struct {
		name string
		typ  domain.AccountType
		icon string
	}{
		{"Checking Account", domain.AccountTypeChecking, "💰"},
		{"Savings Account", domain.AccountTypeSavings, "💾"},
	}
	for i, d := range defaults {
		account := &domain.Account{
			AccountID:        ident.NewAccountID(int64(i)),
			UserID:           user.UserID,
			AccountNumber:    ident.NewAccountNumber(),
			AccountName:      d.name,
			Type:             d.typ,
			Balance:          decimal.Zero,
			AvailableBalance: decimal.Zero,
			Currency:         "USD",
			CreatedAt:        now(),
			Status:           "active",
			Icon:             d.icon,
		}
		if err := uc.ledger.CreateAccount(ctx, account); err != nil {
			return nil, err
		}
	}

	return &AuthResult{Token: newToken(), UserID: user.UserID, User: user}, nil
}

// Login 驗證帳密。管理員走靜態帳密，一般使用者比對 SHA-256 hash。
func (uc *UserUseCase) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == adminEmail && password == adminPassword {
		return &AuthResult{
			Token:   "admin-token-" + newToken(),
			UserID:  domain.AdminUserID,
			IsAdmin: true,
			User: &domain.User{
				UserID:    domain.AdminUserID,
				FirstName: "Admin",
				LastName:  "User",
				Email:     email,
				Status:    "active",
			},
		}, nil
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil || user.PasswordHash != HashPassword(password) {
		return nil, domain.ErrInvalidCredentials
	}
	return &AuthResult{Token: newToken(), UserID: user.UserID, User: user}, nil
}

// GetUser 取得使用者
func (uc *UserUseCase) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.Get(ctx, userID)
}

// UpdateProfile 更新姓名/電話；空字串欄位不變
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID, firstName, lastName, phone string) (*domain.User, error) {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	if phone != "" {
		user.Phone = phone
	}
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword 驗證舊密碼後更新
func (uc *UserUseCase) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash != HashPassword(currentPassword) {
		return domain.ErrInvalidCredentials
	}
	user.PasswordHash = HashPassword(newPassword)
	return uc.users.Update(ctx, user)
}

// ListUsers 管理端使用者列表
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return uc.users.List(ctx)
}

// AdminUpdateParams 管理端可調整的欄位；nil 代表不變
type AdminUpdateParams struct {
	Status           *string
	AdminNote        *string
	AuthVerification *domain.AuthVerification
}

// AdminUpdateUser 管理端更新使用者狀態、備註與 Auth Verification 設定
func (uc *UserUseCase) AdminUpdateUser(ctx context.Context, userID string, params AdminUpdateParams) (*domain.User, error) {
	user, err := uc.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if params.Status != nil && *params.Status != "" {
		user.Status = *params.Status
	}
	if params.AdminNote != nil {
		user.AdminNote = *params.AdminNote
	}
	if params.AuthVerification != nil {
		user.AuthVerification = *params.AuthVerification
	}
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
