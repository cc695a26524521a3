package models

import "time"

type DeliveryStatus string

const (
	DeliverySent   DeliveryStatus = "sent"
	DeliveryFailed DeliveryStatus = "failed"
)

type ReceiptKind string

const (
	ReceiptAssigned ReceiptKind = "assigned"
	ReceiptReminder ReceiptKind = "reminder"
)

// DeliveryReceipt records the outcome of one notification attempt.
// Receipts are append-only: a resend writes a new row.
type DeliveryReceipt struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	TaskID      uint           `json:"task_id" gorm:"index;not null"`
	RecipientID uint           `json:"recipient_id" gorm:"index;not null"`
	Email       string         `json:"email" gorm:"not null"`
	Kind        ReceiptKind    `json:"kind" gorm:"size:16;default:'assigned'"`
	Status      DeliveryStatus `json:"status" gorm:"size:16;not null;index"`
	Error       string         `json:"error,omitempty" gorm:"type:text"`
	SentAt      time.Time      `json:"sent_at"`
}

// DeliverySummary is the sent/failed breakdown derived from receipts.
type DeliverySummary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func Summarize(receipts []DeliveryReceipt) DeliverySummary {
	s := DeliverySummary{Total: len(receipts)}
	for _, r := range receipts {
		if r.Status == DeliverySent {
			s.Sent++
		} else {
			s.Failed++
		}
	}
	return s
}
