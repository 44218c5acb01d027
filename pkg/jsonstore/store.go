// Package jsonstore 提供扁平 JSON 集合檔的載入與整檔改寫。
//
// 每種實體一個檔案 (accounts.json, transactions.json...)，內容是單一 JSON
// 陣列；每次異動把整個集合重寫回去。寫入走 temp file + rename，確保檔案
// 層級不會出現寫到一半的狀態。
package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// 自己定義常用的權限常量
const (
	// rw-r--r-- (擁有者讀寫，其他人唯讀)
	FileModeReadOnly fs.FileMode = 0644

	// rwxr-xr-x (擁有者全開，其他人可讀可執行)
	FileModeExecutable fs.FileMode = 0755
)

// Collection 是一個集合檔。泛型參數 T 為實體型別。
type Collection[T any] struct {
	path string
	mu   sync.Mutex
}

// NewCollection 建立集合檔實例；會順便確保資料目錄存在。
func NewCollection[T any](dir, name string) (*Collection[T], error) {
	if err := os.MkdirAll(dir, FileModeExecutable); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Collection[T]{path: filepath.Join(dir, name)}, nil
}

// Load 讀取整個集合。檔案不存在視為空集合 (初次啟動)。
func (c *Collection[T]) Load() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.path, err)
	}
	return items, nil
}

// Save 整檔改寫集合。先寫 temp file 再 rename，失敗時舊檔保持原狀。
func (c *Collection[T]) Save(items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.path, err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, FileModeReadOnly); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replacing %s: %w", c.path, err)
	}
	return nil
}
