// Package bus carries fire-and-forget events between the API and the worker.
package bus

import (
	"context"

	"github.com/yanun0323/errors"

	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// Message is one delivered event.
type Message struct {
	Subject string
	Data    []byte
}

// Handler processes a delivered message.
type Handler func(ctx context.Context, msg Message)

// Publisher sends messages without waiting for consumers.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// Bus publishes and subscribes. Subscriptions in the same group compete
// for messages; they stop when ctx is done.
type Bus interface {
	Publisher
	Subscribe(ctx context.Context, subject, group string, handler Handler) error
	Close() error
}

const (
	DriverMemory = "memory"
	DriverNATS   = "nats"
)

// Option selects and configures a bus driver.
type Option struct {
	Driver   string     `mapstructure:"driver"`
	Capacity int        `mapstructure:"capacity"`
	NATS     NATSOption `mapstructure:"nats"`
}

// Open builds the bus named by option.Driver.
func Open(ctx context.Context, option Option) (Bus, error) {
	switch option.Driver {
	case DriverMemory, "":
		capacity := option.Capacity
		if capacity <= 0 {
			capacity = 4096
		}
		return NewMemory(capacity), nil
	case DriverNATS:
		return DialNATS(ctx, option.NATS)
	default:
		return nil, errors.Wrap(exception.ErrUnknownDriver, option.Driver)
	}
}
