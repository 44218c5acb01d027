// Package ident 產生系統各實體的識別碼。
//
// 格式沿用既有資料檔：時間成分 (unix 毫秒) 加上定寬亂數成分。
// 只保證「極高機率」不重複，不做碰撞檢查、也不要求密碼學強度。
package ident

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randSuffix 回傳 n 碼大寫 base36 亂數字串
func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Upper[rand.IntN(len(base36Upper))]
	}
	return string(b)
}

// NewAccountNumber 回傳 10 位數字的帳號 (1000000000 ~ 9999999999)
func NewAccountNumber() string {
	return strconv.FormatInt(1_000_000_000+rand.Int64N(9_000_000_000), 10)
}

// NewTransactionID 交易識別碼，如 "TRX1756700000000AB3K9ZQ2M"。
// 時間成分在前，同一毫秒內靠亂數尾碼區分；依建構方式即為時間有序。
func NewTransactionID() string {
	return "TRX" + strconv.FormatInt(time.Now().UnixMilli(), 10) + randSuffix(9)
}

// NewNotificationID 通知識別碼，如 "NOT1756700000000AB3K9ZQ2M"
func NewNotificationID() string {
	return "NOT" + strconv.FormatInt(time.Now().UnixMilli(), 10) + randSuffix(9)
}

// NewUserID 使用者識別碼，如 "USR1756700000000"
func NewUserID() string {
	return "USR" + strconv.FormatInt(time.Now().UnixMilli(), 10)
}

// NewAccountID 帳戶識別碼，如 "ACC1756700000000"。
// offset 讓同一個請求內建立多個帳戶時 (註冊送兩個預設帳戶) 不會撞號。
func NewAccountID(offset int64) string {
	return "ACC" + strconv.FormatInt(time.Now().UnixMilli()+offset, 10)
}
