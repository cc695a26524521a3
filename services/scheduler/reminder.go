// Package scheduler runs the due-date reminder job.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"institute/logger"
	"institute/models"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Store interface {
	ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]models.Task, error)
	ListPendingRecipients(ctx context.Context, task *models.Task) ([]models.Recipient, error)
}

// Notifier fans a message out to recipients and reports one receipt each.
type Notifier interface {
	Notify(ctx context.Context, task *models.Task, recipients []models.Recipient, kind models.ReceiptKind) []models.DeliveryReceipt
}

// Reminder mails students who have not submitted work due tomorrow.
type Reminder struct {
	store    Store
	notifier Notifier
	log      *logger.Logger
	now      func() time.Time
}

func NewReminder(store Store, notifier Notifier, log *logger.Logger) *Reminder {
	return &Reminder{store: store, notifier: notifier, log: log, now: time.Now}
}

// RunOnce sends reminders for every task due tomorrow and returns the receipts written.
func (r *Reminder) RunOnce(ctx context.Context) ([]models.DeliveryReceipt, error) {
	tomorrow := now.With(r.now()).BeginningOfDay().AddDate(0, 0, 1)
	tasks, err := r.store.ListTasksDueBetween(ctx, tomorrow, tomorrow.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("list tasks due %s: %w", tomorrow.Format("2006-01-02"), err)
	}

	var all []models.DeliveryReceipt
	for i := range tasks {
		task := &tasks[i]
		pending, err := r.store.ListPendingRecipients(ctx, task)
		if err != nil {
			r.log.Error("list pending recipients", zap.Uint("task_id", task.ID), zap.Error(err))
			continue
		}
		if len(pending) == 0 {
			continue
		}
		receipts := r.notifier.Notify(ctx, task, pending, models.ReceiptReminder)
		summary := models.Summarize(receipts)
		r.log.Info("due-date reminders sent",
			zap.Uint("task_id", task.ID),
			zap.Int("sent", summary.Sent),
			zap.Int("failed", summary.Failed),
		)
		all = append(all, receipts...)
	}
	return all, nil
}

// Start schedules the reminder on spec (standard five-field cron). The caller
// stops the returned cron on shutdown.
func Start(spec string, r *Reminder, log *logger.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		log.Info("running due-date reminder job")
		if _, err := r.RunOnce(context.Background()); err != nil {
			log.Error("due-date reminder job failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_CRON %q: %w", spec, err)
	}
	c.Start()
	log.Info("due-date reminder scheduled", zap.String("cron", spec))
	return c, nil
}
