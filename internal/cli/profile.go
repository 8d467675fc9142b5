package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/config"
)

func notifyContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}

// startProfiler pushes continuous profiles when enabled. The returned stop
// func is always safe to call.
func startProfiler(cfg config.Profiling, mode string) (func(), error) {
	if !cfg.Enabled {
		return func() {}, nil
	}
	tags := map[string]string{"mode": mode}
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: cfg.Application,
		ServerAddress:   cfg.ServerURL,
		Tags:            tags,
		Logger:          profileLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "start profiler")
	}
	logs.Infof("profiling %s to %s", cfg.Application, cfg.ServerURL)
	return func() {
		if err := profiler.Stop(); err != nil {
			logs.Warnf("stop profiler, err: %+v", err)
		}
	}, nil
}

// profileLogger routes profiler output into the process log.
type profileLogger struct{}

func (profileLogger) Infof(format string, args ...interface{})  { logs.Infof(format, args...) }
func (profileLogger) Debugf(format string, args ...interface{}) { logs.Debugf(format, args...) }
func (profileLogger) Errorf(format string, args ...interface{}) { logs.Errorf(format, args...) }
