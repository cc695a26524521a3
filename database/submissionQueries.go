package database

import (
	"context"
	"errors"
	"time"

	"institute/errdefs"
	"institute/models"
)

// UpsertSubmission writes the file reference for a (student, task) pair.
// Remark and completion state of an existing row are left untouched; a
// completed pair is refused with ErrInvalidTransition.
func (s *Store) UpsertSubmission(ctx context.Context, studentID, taskID uint, fileURL string, at time.Time) (*models.Submission, error) {
	updated, err := s.resubmit(ctx, studentID, taskID, fileURL, at)
	if err != nil {
		return nil, err
	}
	if updated {
		return s.GetSubmission(ctx, taskID, studentID)
	}

	sub := models.Submission{
		StudentID:   studentID,
		TaskID:      taskID,
		FileURL:     fileURL,
		SubmittedAt: at,
	}
	err = translate(s.db.WithContext(ctx).Create(&sub).Error)
	if err == nil {
		return s.GetSubmission(ctx, taskID, studentID)
	}
	if !errors.Is(err, errdefs.ErrDuplicate) {
		return nil, err
	}

	// lost an insert race, or the pair is already completed
	updated, err = s.resubmit(ctx, studentID, taskID, fileURL, at)
	if err != nil {
		return nil, err
	}
	existing, err := s.GetSubmission(ctx, taskID, studentID)
	if err != nil {
		return nil, err
	}
	if !updated && existing.Completed {
		return existing, errdefs.ErrInvalidTransition
	}
	return existing, nil
}

// resubmit replaces the file of a pair that is not completed yet.
func (s *Store) resubmit(ctx context.Context, studentID, taskID uint, fileURL string, at time.Time) (bool, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("task_id = ? AND student_id = ? AND completed = ?", taskID, studentID, false).
		Updates(map[string]interface{}{"file_url": fileURL, "submitted_at": at})
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) GetSubmission(ctx context.Context, taskID, studentID uint) (*models.Submission, error) {
	var sub models.Submission
	err := s.db.WithContext(ctx).
		Where("task_id = ? AND student_id = ?", taskID, studentID).
		First(&sub).Error
	if err != nil {
		if errors.Is(translate(err), errdefs.ErrNotFound) {
			return nil, errdefs.ErrSubmissionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// SetRemark overwrites the reviewer remark unless the pair is already completed.
func (s *Store) SetRemark(ctx context.Context, taskID, studentID uint, remark string) (*models.Submission, error) {
	res := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("task_id = ? AND student_id = ? AND completed = ?", taskID, studentID, false).
		Updates(map[string]interface{}{"remark": remark, "remarked_at": time.Now()})
	if res.Error != nil {
		return nil, translate(res.Error)
	}

	sub, err := s.GetSubmission(ctx, taskID, studentID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && sub.Completed {
		return sub, errdefs.ErrInvalidTransition
	}
	return sub, nil
}

// SetCompleted flips completed to true. changed reports whether this call made the transition.
func (s *Store) SetCompleted(ctx context.Context, taskID, studentID uint) (sub *models.Submission, changed bool, err error) {
	res := s.db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("task_id = ? AND student_id = ? AND completed = ?", taskID, studentID, false).
		Updates(map[string]interface{}{"completed": true})
	if res.Error != nil {
		return nil, false, translate(res.Error)
	}

	sub, err = s.GetSubmission(ctx, taskID, studentID)
	if err != nil {
		return nil, false, err
	}
	return sub, res.RowsAffected > 0, nil
}

func (s *Store) ListSubmissionsByTask(ctx context.Context, taskID uint) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("student_id").
		Find(&subs).Error
	return subs, translate(err)
}
