// Package dispatcher creates assignment tasks and notifies every student of the
// task's batch, recording one delivery receipt per recipient.
package dispatcher

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
	"institute/services/identifier"
	"institute/services/notification"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Store is the slice of the record store the dispatcher needs.
type Store interface {
	InsertTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id uint) (*models.Task, error)
	ResolveRecipientsByBatch(ctx context.Context, batch string) ([]models.Recipient, error)
	InsertDeliveryReceipt(ctx context.Context, receipt *models.DeliveryReceipt) error
	ListDeliveryReceipts(ctx context.Context, taskID uint) ([]models.DeliveryReceipt, error)
}

type Options struct {
	Workers     int
	SendTimeout time.Duration
	Institute   string
}

type Dispatcher struct {
	store       Store
	sender      notification.Sender
	links       *deeplink.Builder
	workers     int
	sendTimeout time.Duration
	institute   string
	log         *logger.Logger

	now      func() time.Time
	newToken func() (string, error)
}

func New(store Store, sender notification.Sender, links *deeplink.Builder, opts Options, log *logger.Logger) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.SendTimeout <= 0 {
		opts.SendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		store:       store,
		sender:      sender,
		links:       links,
		workers:     opts.Workers,
		sendTimeout: opts.SendTimeout,
		institute:   opts.Institute,
		log:         log,
		now:         time.Now,
		newToken:    identifier.NewAccessToken,
	}
}

type CreateTaskInput struct {
	Batch       string
	Course      string
	Title       string
	Description string
	DueDate     time.Time
}

func (in CreateTaskInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Batch) == "" {
		missing = append(missing, "batch")
	}
	if strings.TrimSpace(in.Course) == "" {
		missing = append(missing, "course")
	}
	if strings.TrimSpace(in.Title) == "" {
		missing = append(missing, "title")
	}
	if in.DueDate.IsZero() {
		missing = append(missing, "due_date")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", errdefs.ErrValidationFailed, strings.Join(missing, ", "))
	}
	return nil
}

// DispatchResult is the committed task plus the receipts written for this run.
type DispatchResult struct {
	Task     *models.Task            `json:"task"`
	Receipts []models.DeliveryReceipt `json:"receipts"`
	Summary  models.DeliverySummary  `json:"summary"`
}

// CreateAndDispatch persists the task and fans the assignment out to its batch.
// Only task creation errors are returned; per-recipient failures land in receipts.
func (d *Dispatcher) CreateAndDispatch(ctx context.Context, in CreateTaskInput) (*DispatchResult, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	task := &models.Task{
		Batch:       strings.TrimSpace(in.Batch),
		Course:      strings.TrimSpace(in.Course),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     datatypes.Date(in.DueDate),
	}
	if err := d.insertTask(ctx, task); err != nil {
		return nil, err
	}

	recipients, err := d.store.ResolveRecipientsByBatch(ctx, task.Batch)
	if err != nil {
		// the task is committed; report it with no receipts rather than failing
		d.log.Error("resolve recipients", zap.Uint("task_id", task.ID), zap.String("batch", task.Batch), zap.Error(err))
		recipients = nil
	}

	receipts := d.Notify(ctx, task, recipients, models.ReceiptAssigned)
	result := &DispatchResult{Task: task, Receipts: receipts, Summary: models.Summarize(receipts)}
	d.log.Info("assignment dispatched",
		zap.Uint("task_id", task.ID),
		zap.String("batch", task.Batch),
		zap.Int("sent", result.Summary.Sent),
		zap.Int("failed", result.Summary.Failed),
	)
	return result, nil
}

// insertTask writes the task, drawing a second token if the first collides.
func (d *Dispatcher) insertTask(ctx context.Context, task *models.Task) error {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := d.newToken()
		if err != nil {
			return err
		}
		task.AccessToken = token
		err = d.store.InsertTask(ctx, task)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errdefs.ErrDuplicate) {
			return fmt.Errorf("insert task: %w", err)
		}
		d.log.Warn("access token collision, regenerating", zap.Int("attempt", attempt+1))
		task.ID = 0
	}
	return fmt.Errorf("insert task: %w", errdefs.ErrDuplicate)
}

// Redispatch sends the task again to the listed students, or to the whole batch
// when studentIDs is empty. New receipts are appended.
func (d *Dispatcher) Redispatch(ctx context.Context, taskID uint, studentIDs []uint) (*DispatchResult, error) {
	task, err := d.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	recipients, err := d.store.ResolveRecipientsByBatch(ctx, task.Batch)
	if err != nil {
		return nil, fmt.Errorf("resolve recipients: %w", err)
	}
	if len(studentIDs) > 0 {
		recipients = filterRecipients(recipients, studentIDs)
		if len(recipients) == 0 {
			return nil, fmt.Errorf("%w: none of the students belong to batch %s", errdefs.ErrNotFound, task.Batch)
		}
	}

	receipts := d.Notify(ctx, task, recipients, models.ReceiptAssigned)
	return &DispatchResult{Task: task, Receipts: receipts, Summary: models.Summarize(receipts)}, nil
}

func filterRecipients(all []models.Recipient, ids []uint) []models.Recipient {
	want := make(map[uint]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Recipient
	for _, r := range all {
		if want[r.StudentID] {
			out = append(out, r)
		}
	}
	return out
}

// Receipts returns every receipt written for the task with the derived totals.
func (d *Dispatcher) Receipts(ctx context.Context, taskID uint) (*DispatchResult, error) {
	task, err := d.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	receipts, err := d.store.ListDeliveryReceipts(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return &DispatchResult{Task: task, Receipts: receipts, Summary: models.Summarize(receipts)}, nil
}
