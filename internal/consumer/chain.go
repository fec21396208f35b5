package consumer

import (
	"context"
	"errors"
)

// Chain runs every handler for each message and joins their errors, so one
// failing projection does not starve the others.
func Chain(handlers ...Handler) Handler {
	return HandlerFunc(func(ctx context.Context, msg Message) error {
		var err error
		for _, h := range handlers {
			if h == nil {
				continue
			}
			err = errors.Join(err, h.Handle(ctx, msg))
		}
		return err
	})
}
