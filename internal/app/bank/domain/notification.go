package domain

import "time"

// NotificationType 通知類型
type NotificationType string

const (
	NotificationTypeCredit      NotificationType = "credit"
	NotificationTypeDebit       NotificationType = "debit"
	NotificationTypeTransaction NotificationType = "transaction"
)

// Notification 通知。寫入後只有 IsRead 會被翻轉。
type Notification struct {
	NotificationID string           `json:"notificationId"`
	UserID         string           `json:"userId"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	Type           NotificationType `json:"type"`
	IsRead         bool             `json:"isRead"`
	Timestamp      time.Time        `json:"timestamp"`
}
