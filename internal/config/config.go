// Package config loads shopd settings from YAML and SHOP_ environment variables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/yanun0323/errors"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/api"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/batch"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/bus"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/catalog"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/pricing"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/worker"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/conn"
	"github.com/smeysmey1509/rest-api-node-sub000/pkg/websocket"
)

const EnvPrefix = "SHOP"

// FileConfig mirrors the YAML layout.
type FileConfig struct {
	HTTP      api.Config         `mapstructure:"http"`
	Worker    WorkerConfig       `mapstructure:"worker"`
	Postgres  conn.Option        `mapstructure:"postgres"`
	Bus       bus.Option         `mapstructure:"bus"`
	Import    ImportConfig       `mapstructure:"import"`
	Pricing   pricing.Config     `mapstructure:"pricing"`
	Socket    websocket.Option   `mapstructure:"socket"`
	RateLimit api.RateLimit      `mapstructure:"rate_limit"`
	Profiling Profiling          `mapstructure:"profiling"`
	Features  FeatureFlagsConfig `mapstructure:"features"`
}

type WorkerConfig struct {
	// Addr serves the socket endpoint and probes of the worker.
	Addr     string       `mapstructure:"addr"`
	Group    string       `mapstructure:"group"`
	Activity batch.Config `mapstructure:"activity"`
}

// ImportConfig sizes the bulk product import pipeline.
type ImportConfig struct {
	MaxBulk int          `mapstructure:"max_bulk"`
	Batch   batch.Config `mapstructure:"batch"`
}

type Profiling struct {
	Enabled     bool              `mapstructure:"enabled"`
	ServerURL   string            `mapstructure:"server_url"`
	Application string            `mapstructure:"application"`
	Tags        map[string]string `mapstructure:"tags"`
}

// FeatureFlagsConfig captures optional runtime flags.
type FeatureFlagsConfig struct {
	Socket *bool `mapstructure:"socket"`
	Import *bool `mapstructure:"import"`
}

// FeatureFlags are resolved runtime flags.
type FeatureFlags struct {
	Socket bool
	Import bool
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	FileConfig
	Flags FeatureFlags
}

// WorkerOption converts the worker section for worker.New.
func (l Loaded) WorkerOption() worker.Option {
	return worker.Option{Group: l.Worker.Group, Activity: l.Worker.Activity}
}

var defaults = map[string]any{
	"http.addr":             ":8080",
	"http.read_timeout":     10 * time.Second,
	"http.write_timeout":    30 * time.Second,
	"http.idle_timeout":     120 * time.Second,
	"http.shutdown_timeout": 30 * time.Second,

	"worker.addr":                    ":8081",
	"worker.group":                   worker.DefaultGroup,
	"worker.activity.name":           "activity",
	"worker.activity.batch_size":     500,
	"worker.activity.queue_size":     8192,
	"worker.activity.flush_interval": time.Second,
	"worker.activity.flush_timeout":  10 * time.Second,

	"postgres.host":              "localhost",
	"postgres.port":              5432,
	"postgres.user":              "shop",
	"postgres.password":          "",
	"postgres.database":          "shop",
	"postgres.ssl_mode":          "disable",
	"postgres.conn_string":       "",
	"postgres.max_open_conns":    20,
	"postgres.max_idle_conns":    5,
	"postgres.conn_max_lifetime": 30 * time.Minute,
	"postgres.slow_query":        200 * time.Millisecond,

	"bus.driver":               bus.DriverNATS,
	"bus.capacity":             4096,
	"bus.nats.url":              "nats://127.0.0.1:4222",
	"bus.nats.name":             "shopd",
	"bus.nats.connect_timeout":  5 * time.Second,
	"bus.nats.reconnect_wait":   2 * time.Second,
	"bus.nats.reconnect_jitter": 500 * time.Millisecond,
	"bus.nats.max_reconnects":   -1,
	"bus.nats.connect_retries":  5,
	"bus.nats.max_retry_wait":   15 * time.Second,
	"bus.nats.buffer":           1024,

	"import.max_bulk":             catalog.DefaultMaxBulk,
	"import.batch.name":           "product_import",
	"import.batch.batch_size":     200,
	"import.batch.queue_size":     10000,
	"import.batch.flush_interval": 500 * time.Millisecond,
	"import.batch.flush_timeout":  30 * time.Second,

	"pricing.tax_rate_bps": 0,
	"pricing.tax_delivery": false,

	"socket.queue_size":       websocket.DefaultQueueSize,
	"socket.overflow":         string(websocket.OverflowDropOldest),
	"socket.write_timeout":    websocket.DefaultWriteTimeout,
	"socket.pong_wait":        websocket.DefaultPongWait,
	"socket.max_message_size": websocket.DefaultMaxMessageSize,

	"rate_limit.enabled": true,
	"rate_limit.rps":     50.0,
	"rate_limit.burst":   100,

	"profiling.enabled":     false,
	"profiling.server_url":  "http://127.0.0.1:4040",
	"profiling.application": "shopd",
}

// Load reads path when set, applies SHOP_ overrides (SHOP_HTTP_ADDR for
// http.addr), validates, and resolves flags.
func Load(path string) (Loaded, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Loaded{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg FileConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Loaded{}, err
	}
	return Loaded{FileConfig: cfg, Flags: resolveFeatures(cfg.Features)}, nil
}

func (c FileConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	if c.Worker.Addr == "" {
		return errors.New("worker addr is required")
	}
	if err := c.Worker.Activity.Validate(); err != nil {
		return errors.Wrap(err, "worker.activity")
	}
	if err := c.Import.Batch.Validate(); err != nil {
		return errors.Wrap(err, "import.batch")
	}
	if c.Import.MaxBulk <= 0 {
		return errors.New("import max_bulk must be positive")
	}
	switch c.Bus.Driver {
	case bus.DriverMemory, bus.DriverNATS:
	default:
		return errors.Errorf("unknown bus driver %q", c.Bus.Driver)
	}
	if c.Bus.Driver == bus.DriverNATS && c.Bus.NATS.URL == "" {
		return errors.New("bus nats url is required")
	}
	if c.Postgres.ConnString == "" && (c.Postgres.Host == "" || c.Postgres.Database == "") {
		return errors.New("postgres host and database are required without conn_string")
	}
	if c.Pricing.TaxRateBps < 0 || c.Pricing.TaxRateBps > 10000 {
		return errors.New("pricing tax_rate_bps must be within 0..10000")
	}
	switch c.Socket.Overflow {
	case websocket.OverflowDropOldest, websocket.OverflowDropNewest:
	default:
		return errors.Errorf("unknown socket overflow %q", c.Socket.Overflow)
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 {
		return errors.New("rate_limit rps must be positive when enabled")
	}
	if c.Profiling.Enabled && c.Profiling.ServerURL == "" {
		return errors.New("profiling server_url is required when enabled")
	}
	return nil
}

func resolveFeatures(cfg FeatureFlagsConfig) FeatureFlags {
	flags := FeatureFlags{Socket: true, Import: true}
	if cfg.Socket != nil {
		flags.Socket = *cfg.Socket
	}
	if cfg.Import != nil {
		flags.Import = *cfg.Import
	}
	return flags
}
