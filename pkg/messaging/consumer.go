package messaging

import (
	"context"
	"encoding/json"
	"fmt"
)

// Envelope is a received Message whose payload is left for the handler to
// decode.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Handler processes one message. Returning an error stops consumption.
type Handler func(ctx context.Context, env Envelope) error

// Consume subscribes to channel and feeds every message to handler until ctx
// is done or the subscription ends. Malformed messages are passed to onBad,
// when set, and skipped.
func Consume(ctx context.Context, broker Broker, channel string, handler Handler, onBad func([]byte, error)) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case raw, ok := <-msgs:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				if onBad != nil {
					onBad(raw, err)
				}
				continue
			}
			if err := handler(ctx, env); err != nil {
				return fmt.Errorf("failed to handle %s message: %w", env.Type, err)
			}
		}
	}
}
