package models

import "time"

// Submission is the single mutable row per (student, task) pair.
type Submission struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	StudentID   uint       `json:"student_id" gorm:"not null;uniqueIndex:idx_submission_pair,priority:1"`
	TaskID      uint       `json:"task_id" gorm:"not null;uniqueIndex:idx_submission_pair,priority:2;index"`
	FileURL     string     `json:"file_url" gorm:"not null"`
	SubmittedAt time.Time  `json:"submitted_at"`
	Remark      string     `json:"remark" gorm:"type:text;default:''"`
	RemarkedAt  *time.Time `json:"remarked_at"`
	Completed   bool       `json:"completed" gorm:"default:false"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type SubmissionState string

const (
	StateAssigned  SubmissionState = "ASSIGNED"
	StateSubmitted SubmissionState = "SUBMITTED"
	StateRemarked  SubmissionState = "REMARKED"
	StateCompleted SubmissionState = "COMPLETED"
)

// StateOf derives the lifecycle state; a nil submission is ASSIGNED. A remark
// older than the latest upload counts as answered.
func StateOf(sub *Submission) SubmissionState {
	switch {
	case sub == nil:
		return StateAssigned
	case sub.Completed:
		return StateCompleted
	case sub.Remark != "" && sub.RemarkedAt != nil && !sub.RemarkedAt.Before(sub.SubmittedAt):
		return StateRemarked
	default:
		return StateSubmitted
	}
}
