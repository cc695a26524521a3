package dispatcher

import (
	"context"

	"institute/models"
	"institute/services/notification"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type delivery struct {
	idx     int
	receipt models.DeliveryReceipt
}

// Notify sends one message per recipient on a bounded pool and returns the
// receipts in recipient order. It keeps going if the caller goes away.
func (d *Dispatcher) Notify(ctx context.Context, task *models.Task, recipients []models.Recipient, kind models.ReceiptKind) []models.DeliveryReceipt {
	if len(recipients) == 0 {
		return []models.DeliveryReceipt{}
	}
	ctx = context.WithoutCancel(ctx)

	results := make(chan delivery, len(recipients))
	var g errgroup.Group
	g.SetLimit(d.workers)
	for i, r := range recipients {
		g.Go(func() error {
			results <- delivery{idx: i, receipt: d.deliver(ctx, task, r, kind)}
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	receipts := make([]models.DeliveryReceipt, len(recipients))
	for res := range results {
		receipts[res.idx] = res.receipt
	}
	return receipts
}

func (d *Dispatcher) deliver(ctx context.Context, task *models.Task, r models.Recipient, kind models.ReceiptKind) models.DeliveryReceipt {
	receipt := models.DeliveryReceipt{
		TaskID:      task.ID,
		RecipientID: r.StudentID,
		Email:       r.Email,
		Kind:        kind,
		Status:      models.DeliverySent,
	}

	if err := d.send(ctx, task, r, kind); err != nil {
		receipt.Status = models.DeliveryFailed
		receipt.Error = err.Error()
		d.log.Warn("notification failed",
			zap.Uint("task_id", task.ID),
			zap.Uint("student_id", r.StudentID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	receipt.SentAt = d.now()

	if err := d.store.InsertDeliveryReceipt(ctx, &receipt); err != nil {
		d.log.Error("record delivery receipt",
			zap.Uint("task_id", task.ID),
			zap.Uint("student_id", r.StudentID),
			zap.Error(err),
		)
	}
	return receipt
}

func (d *Dispatcher) send(ctx context.Context, task *models.Task, r models.Recipient, kind models.ReceiptKind) error {
	tmpl := notification.KindAssigned
	if kind == models.ReceiptReminder {
		tmpl = notification.KindReminder
	}
	return notification.Deliver(ctx, d.sender, d.sendTimeout, r.Email, tmpl, notification.Data{
		Institute:   d.institute,
		StudentName: r.Name,
		Course:      task.Course,
		TaskTitle:   task.Title,
		Description: task.Description,
		DueDate:     task.DueTime().Format("02 Jan 2006"),
		Link:        d.links.Assignment(task.AccessToken, r.StudentID),
	})
}
