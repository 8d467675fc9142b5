package bus

import (
	"context"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/obs"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

// NATSOption configures the broker connection.
type NATSOption struct {
	URL            string        `mapstructure:"url"`
	Name           string        `mapstructure:"name"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	// ReconnectJitter spreads reconnects of many replicas after a broker restart.
	ReconnectJitter time.Duration `mapstructure:"reconnect_jitter"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	// Initial dial attempts double ReconnectWait up to MaxRetryWait.
	ConnectRetries int           `mapstructure:"connect_retries"`
	MaxRetryWait   time.Duration `mapstructure:"max_retry_wait"`
	Buffer         int           `mapstructure:"buffer"`
}

func (o NATSOption) withDefaults() NATSOption {
	if o.URL == "" {
		o.URL = nats.DefaultURL
	}
	if o.Name == "" {
		o.Name = "shopd"
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 5 * time.Second
	}
	if o.ReconnectWait <= 0 {
		o.ReconnectWait = 2 * time.Second
	}
	if o.MaxReconnects == 0 {
		o.MaxReconnects = -1
	}
	if o.ConnectRetries <= 0 {
		o.ConnectRetries = 5
	}
	if o.Buffer <= 0 {
		o.Buffer = 1024
	}
	if o.ReconnectJitter < 0 {
		o.ReconnectJitter = 0
	}
	if o.MaxRetryWait < o.ReconnectWait {
		o.MaxRetryWait = 15 * time.Second
	}
	return o
}

// retryWait is the pause after a failed dial attempt (1-based).
func (o NATSOption) retryWait(attempt int) time.Duration {
	wait := o.ReconnectWait
	for i := 1; i < attempt && wait < o.MaxRetryWait; i++ {
		wait *= 2
	}
	return min(wait, o.MaxRetryWait)
}

func (o NATSOption) options() []nats.Option {
	return []nats.Option{
		nats.Name(o.Name),
		nats.Timeout(o.ConnectTimeout),
		nats.ReconnectWait(o.ReconnectWait),
		nats.ReconnectJitter(o.ReconnectJitter, o.ReconnectJitter),
		nats.MaxReconnects(o.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			obs.BusConnEvent("disconnected")
			if err != nil {
				logs.Warnf("nats disconnected, err: %+v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			obs.BusConnEvent("reconnected")
			logs.Infof("nats reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			obs.BusConnEvent("closed")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			obs.BusConnEvent("error")
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logs.Errorf("nats async error, subject: %s, err: %+v", subject, err)
		}),
	}
}

// NATS is a Bus backed by a NATS connection. Subscriptions use queue groups so
// several workers share one subject.
type NATS struct {
	nc     *nats.Conn
	buffer int

	mu   sync.Mutex
	subs []*nats.Subscription
	wg   sync.WaitGroup
}

// DialNATS connects to the broker, retrying with a doubling wait until the retry budget
// is spent or ctx is done.
func DialNATS(ctx context.Context, option NATSOption) (*NATS, error) {
	option = option.withDefaults()
	var lastErr error
	for attempt := 1; attempt <= option.ConnectRetries; attempt++ {
		nc, err := nats.Connect(option.URL, option.options()...)
		if err == nil {
			logs.Infof("nats connected to %s", nc.ConnectedUrl())
			return &NATS{nc: nc, buffer: option.Buffer}, nil
		}
		lastErr = err
		wait := option.retryWait(attempt)
		logs.Warnf("nats connect attempt %d failed, retry in %s, err: %+v", attempt, wait, err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, errors.Wrap(ctx.Err(), "dial nats")
		case <-timer.C:
		}
	}
	return nil, errors.Wrap(lastErr, "dial nats").With("url", option.URL)
}

// Connected reports whether the broker connection is currently usable.
func (b *NATS) Connected() bool {
	return b.nc != nil && b.nc.IsConnected()
}

func (b *NATS) Publish(_ context.Context, subject string, data []byte) error {
	if subject == "" {
		return exception.ErrBusNoSubject
	}
	if err := b.nc.Publish(subject, data); err != nil {
		reason := "error"
		if b.nc.IsClosed() {
			reason = "closed"
		}
		obs.BusPublishFailed(subject, reason)
		return errors.Wrap(err, "nats publish").With("subject", subject)
	}
	obs.BusPublished(subject)
	return nil
}

func (b *NATS) Subscribe(ctx context.Context, subject, group string, handler Handler) error {
	if subject == "" {
		return exception.ErrBusNoSubject
	}
	if handler == nil {
		return exception.ErrBusNilHandler
	}

	ch := make(chan *nats.Msg, b.buffer)
	sub, err := b.nc.ChanQueueSubscribe(subject, group, ch)
	if err != nil {
		return errors.Wrap(err, "nats subscribe").With("subject", subject).With("group", group)
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for {
			select {
			case <-ctx.Done():
				if sub.IsValid() && !b.nc.IsClosed() {
					if err := sub.Unsubscribe(); err != nil {
						logs.Warnf("nats unsubscribe %s, err: %+v", subject, err)
					}
				}
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				obs.BusConsumed(msg.Subject)
				handler(ctx, Message{Subject: msg.Subject, Data: msg.Data})
			}
		}
	}()
	return nil
}

// Close drains pending messages and closes the connection.
func (b *NATS) Close() error {
	if b.nc == nil || b.nc.IsClosed() {
		return nil
	}
	if err := b.nc.Drain(); err != nil {
		b.nc.Close()
		return errors.Wrap(err, "nats drain")
	}
	return nil
}
