package domain

import "time"

// AuthVerification 轉帳前的二次驗證設定 (step-up authentication)。
// AuthCode 以明碼儲存、逐字比對：這是既有系統的契約，不是此處要強化的功能。
type AuthVerification struct {
	Enabled  bool   `json:"enabled"`
	AuthName string `json:"authName"`
	AuthCode string `json:"authCode"`
}

// User 使用者。核心路徑只讀取它來決定是否需要二次驗證。
type User struct {
	UserID           string           `json:"userId"`
	FirstName        string           `json:"firstName"`
	LastName         string           `json:"lastName"`
	Email            string           `json:"email"`
	Phone            string           `json:"phone"`
	PasswordHash     string           `json:"passwordHash"`
	Status           string           `json:"status"`
	ProfilePhoto     string           `json:"profilePhoto"`
	CreatedAt        time.Time        `json:"createdAt"`
	AdminNote        string           `json:"adminNote"`
	AuthVerification AuthVerification `json:"authVerification"`
}

// FullName 顯示名稱 "First Last"
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
