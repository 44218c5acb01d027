package domain

import "errors"

var (
	// ErrInvalidAmount 金額非法 (缺少或 <= 0)
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds 餘額不足
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound 找不到帳戶
	ErrAccountNotFound = errors.New("account not found")

	// ErrSameAccount 來源與目標為同一帳戶
	ErrSameAccount = errors.New("cannot send money to the same account")

	// ErrAccountAlreadyExists 帳戶已存在 (ID 或帳號碰撞)
	ErrAccountAlreadyExists = errors.New("account already exists")

	// ErrAuthRequired 使用者啟用了 Auth Verification，但未提供驗證碼
	ErrAuthRequired = errors.New("auth verification code required")

	// ErrAuthCodeMismatch 驗證碼不符
	ErrAuthCodeMismatch = errors.New("invalid authentication code")

	// ErrStorageFailure 底層儲存寫入失敗，當次操作已回滾
	ErrStorageFailure = errors.New("storage failure")

	// ErrUserNotFound 找不到使用者
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken 該 Email 已註冊
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials 帳密錯誤
	ErrInvalidCredentials = errors.New("invalid email or password")
)
