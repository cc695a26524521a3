// Package submission accepts student uploads through assignment links and
// moves each (student, task) pair through review.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"institute/errdefs"
	"institute/logger"
	"institute/models"
	"institute/services/deeplink"
	"institute/services/notification"
	"institute/services/storage"

	"go.uber.org/zap"
)

type Store interface {
	GetTaskByToken(ctx context.Context, token string) (*models.Task, error)
	GetTaskByID(ctx context.Context, id uint) (*models.Task, error)
	GetRecipient(ctx context.Context, studentID uint) (*models.Recipient, error)
	UpsertSubmission(ctx context.Context, studentID, taskID uint, fileURL string, at time.Time) (*models.Submission, error)
	GetSubmission(ctx context.Context, taskID, studentID uint) (*models.Submission, error)
	SetRemark(ctx context.Context, taskID, studentID uint, remark string) (*models.Submission, error)
	SetCompleted(ctx context.Context, taskID, studentID uint) (*models.Submission, bool, error)
	ListSubmissionsByTask(ctx context.Context, taskID uint) ([]models.Submission, error)
}

type Options struct {
	SendTimeout time.Duration
	Institute   string
}

type Service struct {
	store       Store
	objects     storage.ObjectStore
	sender      notification.Sender
	links       *deeplink.Builder
	sendTimeout time.Duration
	institute   string
	log         *logger.Logger
	now         func() time.Time
}

func New(store Store, objects storage.ObjectStore, sender notification.Sender, links *deeplink.Builder, opts Options, log *logger.Logger) *Service {
	return &Service{
		store:       store,
		objects:     objects,
		sender:      sender,
		links:       links,
		sendTimeout: opts.SendTimeout,
		institute:   opts.Institute,
		log:         log,
		now:         time.Now,
	}
}

// Upload is a file received from a student.
type Upload struct {
	Filename string
	Data     []byte
}

// Result is a submission after a transition. Notified is false when the student
// email could not be delivered; the transition itself still stands.
type Result struct {
	Submission *models.Submission     `json:"submission"`
	State      models.SubmissionState `json:"state"`
	Notified   bool                   `json:"notified"`
}

// resolveTask maps the link parameters to a task. Any failure is INVALID_TOKEN.
func (s *Service) resolveTask(ctx context.Context, token string, studentID uint, sig string) (*models.Task, error) {
	if strings.TrimSpace(token) == "" || studentID == 0 {
		return nil, errdefs.ErrInvalidToken
	}
	task, err := s.store.GetTaskByToken(ctx, token)
	if err != nil {
		if errors.Is(err, errdefs.ErrNotFound) {
			return nil, errdefs.ErrInvalidToken
		}
		return nil, err
	}
	if !s.links.Check(token, studentID, sig) {
		return nil, fmt.Errorf("%w: link signature mismatch", errdefs.ErrInvalidToken)
	}
	return task, nil
}

// Submit stores the upload and records it for the pair. Resubmitting replaces
// the file reference and timestamp on the same row until the pair is completed.
func (s *Service) Submit(ctx context.Context, token string, studentID uint, sig string, file Upload) (*Result, error) {
	task, err := s.resolveTask(ctx, token, studentID, sig)
	if err != nil {
		return nil, err
	}
	if len(file.Data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", errdefs.ErrValidationFailed)
	}

	existing, err := s.store.GetSubmission(ctx, task.ID, studentID)
	switch {
	case err == nil && existing.Completed:
		return nil, fmt.Errorf("%w: submission is already completed", errdefs.ErrInvalidTransition)
	case err != nil && !errors.Is(err, errdefs.ErrSubmissionNotFound):
		return nil, fmt.Errorf("load submission: %w", err)
	}

	url, err := s.objects.Store(ctx, file.Data, file.Filename)
	if err != nil {
		s.log.Error("store submission file", zap.Uint("task_id", task.ID), zap.Uint("student_id", studentID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errdefs.ErrUpstreamFailure, err)
	}

	sub, err := s.store.UpsertSubmission(ctx, studentID, task.ID, url, s.now())
	if err != nil {
		return nil, fmt.Errorf("save submission: %w", err)
	}
	s.log.Info("assignment submitted", zap.Uint("task_id", task.ID), zap.Uint("student_id", studentID))
	return &Result{Submission: sub, State: models.StateOf(sub)}, nil
}

// View is what a student sees when opening their assignment link.
type View struct {
	Task       *models.Task           `json:"task"`
	Submission *models.Submission     `json:"submission,omitempty"`
	State      models.SubmissionState `json:"state"`
}

func (s *Service) View(ctx context.Context, token string, studentID uint, sig string) (*View, error) {
	task, err := s.resolveTask(ctx, token, studentID, sig)
	if err != nil {
		return nil, err
	}
	sub, err := s.store.GetSubmission(ctx, task.ID, studentID)
	if err != nil && !errors.Is(err, errdefs.ErrSubmissionNotFound) {
		return nil, err
	}
	return &View{Task: task, Submission: sub, State: models.StateOf(sub)}, nil
}

// Remark records reviewer feedback and mails it with a resubmission link.
func (s *Service) Remark(ctx context.Context, taskID, studentID uint, remark string) (*Result, error) {
	remark = strings.TrimSpace(remark)
	if remark == "" {
		return nil, fmt.Errorf("%w: remark is required", errdefs.ErrValidationFailed)
	}

	sub, err := s.store.SetRemark(ctx, taskID, studentID, remark)
	if err != nil {
		if errors.Is(err, errdefs.ErrInvalidTransition) {
			return nil, fmt.Errorf("%w: submission is already completed", errdefs.ErrInvalidTransition)
		}
		return nil, err
	}

	res := &Result{Submission: sub, State: models.StateOf(sub)}
	res.Notified = s.notify(ctx, taskID, studentID, notification.KindRemark, remark)
	return res, nil
}

// Complete marks the pair completed. Completing twice is a no-op and does not
// mail the student again.
func (s *Service) Complete(ctx context.Context, taskID, studentID uint) (*Result, error) {
	sub, changed, err := s.store.SetCompleted(ctx, taskID, studentID)
	if err != nil {
		return nil, err
	}
	res := &Result{Submission: sub, State: models.StateOf(sub)}
	if changed {
		res.Notified = s.notify(ctx, taskID, studentID, notification.KindCompleted, "")
	}
	return res, nil
}

func (s *Service) notify(ctx context.Context, taskID, studentID uint, kind notification.Kind, remark string) bool {
	fields := []zap.Field{zap.Uint("task_id", taskID), zap.Uint("student_id", studentID), zap.String("kind", string(kind))}

	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		s.log.Error("load task for notification", append(fields, zap.Error(err))...)
		return false
	}
	recipient, err := s.store.GetRecipient(ctx, studentID)
	if err != nil {
		s.log.Error("load student for notification", append(fields, zap.Error(err))...)
		return false
	}

	err = notification.Deliver(context.WithoutCancel(ctx), s.sender, s.sendTimeout, recipient.Email, kind, notification.Data{
		Institute:   s.institute,
		StudentName: recipient.Name,
		Course:      task.Course,
		TaskTitle:   task.Title,
		Remark:      remark,
		Link:        s.links.Assignment(task.AccessToken, studentID),
	})
	if err != nil {
		s.log.Warn("notification failed", append(fields, zap.Error(err))...)
		return false
	}
	return true
}

// Entry is one row of a reviewer listing.
type Entry struct {
	models.Submission
	State models.SubmissionState `json:"state"`
}

type Listing struct {
	Task        *models.Task `json:"task"`
	Submissions []Entry      `json:"submissions"`
}

func (s *Service) ListByTask(ctx context.Context, taskID uint) (*Listing, error) {
	task, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListSubmissionsByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	out := &Listing{Task: task, Submissions: make([]Entry, 0, len(subs))}
	for i := range subs {
		out.Submissions = append(out.Submissions, Entry{Submission: subs[i], State: models.StateOf(&subs[i])})
	}
	return out, nil
}
