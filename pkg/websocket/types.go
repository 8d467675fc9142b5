package websocket

import "time"

// Key addresses every socket one user holds within a tenant.
type Key struct {
	TenantID string
	UserID   string
}

func (k Key) String() string {
	return k.TenantID + ":" + k.UserID
}

// OverflowPolicy defines queue behavior when a client falls behind.
type OverflowPolicy string

const (
	// OverflowDropOldest evicts the oldest queued frame to make room.
	OverflowDropOldest OverflowPolicy = "drop_oldest"
	// OverflowDropNewest rejects the incoming frame.
	OverflowDropNewest OverflowPolicy = "drop_newest"
)

const (
	DefaultQueueSize      = 64
	DefaultWriteTimeout   = 10 * time.Second
	DefaultPongWait       = 60 * time.Second
	DefaultMaxMessageSize = 4 << 10
)

type Option struct {
	// QueueSize bounds frames waiting per socket.
	QueueSize int            `mapstructure:"queue_size"`
	Overflow  OverflowPolicy `mapstructure:"overflow"`
	// WriteTimeout bounds one frame write including pings.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PongWait is how long a silent client is kept. Pings go out at 9/10 of it.
	PongWait        time.Duration `mapstructure:"pong_wait"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	// AllowedOrigins restricts browser origins; empty allows any.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (opt Option) withDefaults() Option {
	if opt.QueueSize <= 0 {
		opt.QueueSize = DefaultQueueSize
	}
	if opt.Overflow == "" {
		opt.Overflow = OverflowDropOldest
	}
	if opt.WriteTimeout <= 0 {
		opt.WriteTimeout = DefaultWriteTimeout
	}
	if opt.PongWait <= 0 {
		opt.PongWait = DefaultPongWait
	}
	if opt.MaxMessageSize <= 0 {
		opt.MaxMessageSize = DefaultMaxMessageSize
	}
	return opt
}

func (opt Option) pingPeriod() time.Duration {
	return opt.PongWait * 9 / 10
}
