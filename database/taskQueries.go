package database

import (
	"context"
	"time"

	"institute/models"

	"gorm.io/gorm"
)

func (s *Store) InsertTask(ctx context.Context, task *models.Task) error {
	return translate(s.db.WithContext(ctx).Create(task).Error)
}

func (s *Store) GetTaskByToken(ctx context.Context, token string) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).Where("access_token = ?", token).First(&task).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (s *Store) GetTaskByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// ListTasksDueBetween returns tasks whose due date falls in [from, to).
func (s *Store) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("due_date >= ? AND due_date < ?", from, to).
		Order("id").
		Find(&tasks).Error
	return tasks, translate(err)
}

func (s *Store) recipientQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("enrollments").
		Select("DISTINCT students.id AS student_id, students.name AS name, students.email AS email").
		Joins("JOIN students ON students.id = enrollments.student_id").
		Where("enrollments.is_deleted = ? AND enrollments.deleted_at IS NULL", false).
		Where("students.is_deleted = ? AND students.deleted_at IS NULL", false)
}

// ResolveRecipientsByBatch joins enrollments to student contact records for one batch.
func (s *Store) ResolveRecipientsByBatch(ctx context.Context, batch string) ([]models.Recipient, error) {
	var recipients []models.Recipient
	err := s.recipientQuery(ctx).
		Where("enrollments.batch = ?", batch).
		Order("student_id").
		Scan(&recipients).Error
	return recipients, translate(err)
}

// ListPendingRecipients returns batch members that have not submitted for the task.
func (s *Store) ListPendingRecipients(ctx context.Context, task *models.Task) ([]models.Recipient, error) {
	var recipients []models.Recipient
	err := s.recipientQuery(ctx).
		Where("enrollments.batch = ?", task.Batch).
		Where("NOT EXISTS (SELECT 1 FROM submissions WHERE submissions.student_id = students.id AND submissions.task_id = ?)", task.ID).
		Order("student_id").
		Scan(&recipients).Error
	return recipients, translate(err)
}

func (s *Store) GetRecipient(ctx context.Context, studentID uint) (*models.Recipient, error) {
	var student models.Student
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", studentID, false).
		First(&student).Error
	if err != nil {
		return nil, translate(err)
	}
	return &models.Recipient{StudentID: student.ID, Name: student.Name, Email: student.Email}, nil
}

func (s *Store) InsertDeliveryReceipt(ctx context.Context, receipt *models.DeliveryReceipt) error {
	return translate(s.db.WithContext(ctx).Create(receipt).Error)
}

func (s *Store) ListDeliveryReceipts(ctx context.Context, taskID uint) ([]models.DeliveryReceipt, error) {
	var receipts []models.DeliveryReceipt
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("id").
		Find(&receipts).Error
	return receipts, translate(err)
}
