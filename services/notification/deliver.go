package notification

import (
	"context"
	"time"
)

// Deliver renders kind and sends it to one address, giving the transport at most timeout.
func Deliver(ctx context.Context, sender Sender, timeout time.Duration, to string, kind Kind, data Data) error {
	msg, err := Render(kind, data)
	if err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return sender.Send(ctx, to, msg)
}
