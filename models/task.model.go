package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Task is an assignment handed out to every student of a batch.
// The row is immutable once created; receipts and submissions hang off it.
type Task struct {
	gorm.Model
	Batch       string         `json:"batch" gorm:"index;not null"`
	Course      string         `json:"course" gorm:"not null"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	DueDate     datatypes.Date `json:"due_date" gorm:"index"`
	AccessToken string         `json:"access_token" gorm:"size:64;uniqueIndex;not null"`
}

// DueTime returns the due date as a plain time value.
func (t Task) DueTime() time.Time {
	return time.Time(t.DueDate)
}
