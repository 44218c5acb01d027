package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountNumber(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := NewAccountNumber()
		require.Len(t, n, 10)
		// 10 位純數字，首位不為 0
		assert.NotEqual(t, byte('0'), n[0])
		for _, c := range n {
			assert.True(t, c >= '0' && c <= '9', "non-digit in %q", n)
		}
	}
}

func TestNewTransactionID(t *testing.T) {
	id := NewTransactionID()
	assert.True(t, strings.HasPrefix(id, "TRX"))
	// TRX + 13 碼毫秒時間戳 + 9 碼亂數尾碼
	assert.Len(t, id, 3+13+9)
}

func TestNewNotificationID(t *testing.T) {
	id := NewNotificationID()
	assert.True(t, strings.HasPrefix(id, "NOT"))
	assert.Len(t, id, 3+13+9)
}

func TestIDsDiffer(t *testing.T) {
	// 同一毫秒內呼叫也該靠亂數尾碼分開
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewTransactionID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %q", id)
		seen[id] = struct{}{}
	}
}

func TestNewAccountIDOffset(t *testing.T) {
	a := NewAccountID(0)
	b := NewAccountID(1)
	assert.True(t, strings.HasPrefix(a, "ACC"))
	assert.NotEqual(t, a, b)
}
