package jsonstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestLoadMissingFile(t *testing.T) {
	c, err := NewCollection[record](t.TempDir(), "records.json")
	require.NoError(t, err)

	// 檔案不存在視為空集合
	items, err := c.Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCollection[record](dir, "records.json")
	require.NoError(t, err)

	in := []record{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}
	require.NoError(t, c.Save(in))

	out, err := c.Load()
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// 整檔改寫：第二次 Save 完全取代第一次
	require.NoError(t, c.Save([]record{{ID: "3", Name: "c"}}))
	out, err = c.Load()
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "3", out[0].ID)
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCollection[record](dir, "records.json")
	require.NoError(t, err)

	require.NoError(t, c.Save(nil))
	data, err := os.ReadFile(filepath.Join(dir, "records.json"))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCollection[record](dir, "records.json")
	require.NoError(t, err)
	require.NoError(t, c.Save([]record{{ID: "1"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "records.json", entries[0].Name())
}
