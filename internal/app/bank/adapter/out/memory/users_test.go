package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-bank-core/internal/app/bank/domain"
	"github.com/JoeShih716/go-bank-core/pkg/jsonstore"
)

func user(id, email string) *domain.User {
	return &domain.User{
		UserID:       id,
		FirstName:    "Alice",
		LastName:     "Chen",
		Email:        email,
		PasswordHash: "deadbeef",
		Status:       "successful",
	}
}

func TestUserStoreCreateAndLookup(t *testing.T) {
	us, err := NewUserStore(nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, us.Create(ctx, user("USR1", "alice@example.com")))

	got, err := us.Get(ctx, "USR1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	got, err = us.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "USR1", got.UserID)

	_, err = us.Get(ctx, "USR9")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, err = us.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// Email 重複
	err = us.Create(ctx, user("USR2", "alice@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserStoreUpdateReindexesEmail(t *testing.T) {
	us, err := NewUserStore(nil)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, us.Create(ctx, user("USR1", "alice@example.com")))

	updated := user("USR1", "alice.chen@example.com")
	require.NoError(t, us.Update(ctx, updated))

	// 舊 Email 失效，新 Email 可查
	_, err = us.GetByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	got, err := us.GetByEmail(ctx, "alice.chen@example.com")
	require.NoError(t, err)
	assert.Equal(t, "USR1", got.UserID)

	err = us.Update(ctx, user("USR9", "ghost@example.com"))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserStorePersistence(t *testing.T) {
	dir := t.TempDir()
	store, err := jsonstore.NewCollection[domain.User](dir, "users.json")
	require.NoError(t, err)

	us, err := NewUserStore(store)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, us.Create(ctx, user("USR1", "alice@example.com")))
	require.NoError(t, us.Create(ctx, user("USR2", "bob@example.com")))

	reloaded, err := NewUserStore(store)
	require.NoError(t, err)
	list, err := reloaded.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "USR1", list[0].UserID)
	assert.Equal(t, "USR2", list[1].UserID)
}
