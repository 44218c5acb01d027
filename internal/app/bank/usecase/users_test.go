package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/adapter/out/memory"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/internal/app/bank/usecase"
)

func newUserFixture(t *testing.T) (*usecase.UserUseCase, usecase.Ledger) {
	t.Helper()
	ledger, err := memory.NewMutexLedger(nil)
	require.NoError(t, err)
	users, err := memory.NewUserStore(nil)
	require.NoError(t, err)
	return usecase.NewUserUseCase(users, ledger), ledger
}

func TestRegisterCreatesDefaultAccounts(t *testing.T) {
	uc, ledger := newUserFixture(t)
	ctx := context.Background()

	res, err := uc.Register(ctx, usecase.RegisterParams{
		FirstName: "Alice", LastName: "Chen",
		Email: "alice@example.com", Phone: "0912345678", Password: "secret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.False(t, res.IsAdmin)
	assert.Equal(t, "successful", res.User.Status)
	// 密碼不以明碼儲存
	assert.NotEqual(t, "secret", res.User.PasswordHash)
	assert.Equal(t, usecase.HashPassword("secret"), res.User.PasswordHash)

	// 預設 Checking + Savings，零餘額
	accounts, err := ledger.ListAccountsForUser(ctx, res.UserID)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "Checking Account", accounts[0].AccountName)
	assert.Equal(t, domain.AccountTypeChecking, accounts[0].Type)
	assert.Equal(t, "Savings Account", accounts[1].AccountName)
	assert.Equal(t, domain.AccountTypeSavings, accounts[1].Type)
	for _, a := range accounts {
		assert.True(t, a.Balance.IsZero())
		assert.Equal(t, "USD", a.Currency)
		assert.Equal(t, "active", a.Status)
		assert.Len(t, a.AccountNumber, 10)
	}

	// Email 重複
	_, err = uc.Register(ctx, usecase.RegisterParams{
		FirstName: "Alice", LastName: "Again",
		Email: "alice@example.com", Password: "other",
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	uc, _ := newUserFixture(t)
	ctx := context.Background()

	reg, err := uc.Register(ctx, usecase.RegisterParams{
		FirstName: "Alice", LastName: "Chen",
		Email: "alice@example.com", Password: "secret",
	})
	require.NoError(t, err)

	res, err := uc.Login(ctx, "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, reg.UserID, res.UserID)
	assert.False(t, res.IsAdmin)

	_, err = uc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.Login(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginAdmin(t *testing.T) {
	uc, _ := newUserFixture(t)

	res, err := uc.Login(context.Background(), "admin@bankofAmerica.com", "admin123")
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
	assert.Equal(t, domain.AdminUserID, res.UserID)
	assert.Contains(t, res.Token, "admin-token-")

	_, err = uc.Login(context.Background(), "admin@bankofAmerica.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestUpdateProfileKeepsEmptyFields(t *testing.T) {
	uc, _ := newUserFixture(t)
	ctx := context.Background()
	reg, err := uc.Register(ctx, usecase.RegisterParams{
		FirstName: "Alice", LastName: "Chen",
		Email: "alice@example.com", Phone: "0912345678", Password: "secret",
	})
	require.NoError(t, err)

	// 空欄位不變
	user, err := uc.UpdateProfile(ctx, reg.UserID, "Alicia", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Alicia", user.FirstName)
	assert.Equal(t, "Chen", user.LastName)
	assert.Equal(t, "0912345678", user.Phone)
}

func TestChangePassword(t *testing.T) {
	uc, _ := newUserFixture(t)
	ctx := context.Background()
	reg, err := uc.Register(ctx, usecase.RegisterParams{
		FirstName: "Alice", LastName: "Chen",
		Email: "alice@example.com", Password: "secret",
	})
	require.NoError(t, err)

	err = uc.ChangePassword(ctx, reg.UserID, "wrong", "newpass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	require.NoError(t, uc.ChangePassword(ctx, reg.UserID, "secret", "newpass"))
	_, err = uc.Login(ctx, "alice@example.com", "secret")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.Login(ctx, "alice@example.com", "newpass")
	assert.NoError(t, err)
}

func TestAdminUpdateUser(t *testing.T) {
	uc, _ := newUserFixture(t)
	ctx := context.Background()
	reg, err := uc.Register(ctx, usecase.RegisterParams{
		FirstName: "Alice", LastName: "Chen",
		Email: "alice@example.com", Password: "secret",
	})
	require.NoError(t, err)

	user, err := uc.AdminUpdateUser(ctx, reg.UserID, usecase.AdminUpdateParams{
		Status:    strPtr("suspended"),
		AdminNote: strPtr("manual review"),
		AuthVerification: &domain.AuthVerification{
			Enabled: true, AuthName: "Security Code", AuthCode: "4321",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "suspended", user.Status)
	assert.Equal(t, "manual review", user.AdminNote)
	assert.True(t, user.AuthVerification.Enabled)
	assert.Equal(t, "4321", user.AuthVerification.AuthCode)

	// nil 欄位不變
	user, err = uc.AdminUpdateUser(ctx, reg.UserID, usecase.AdminUpdateParams{})
	require.NoError(t, err)
	assert.Equal(t, "suspended", user.Status)
	assert.Equal(t, "manual review", user.AdminNote)

	_, err = uc.AdminUpdateUser(ctx, "USR_NOBODY", usecase.AdminUpdateParams{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
