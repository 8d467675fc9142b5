package exception

import "github.com/yanun0323/errors"

// Bus and batch errors
var (
	ErrBusQueueFull      = errors.New("bus: queue full")
	ErrBusClosed         = errors.New("bus: closed")
	ErrBusNoSubject      = errors.New("bus: empty subject")
	ErrBusNilHandler     = errors.New("bus: nil handler")
	ErrUnknownDriver     = errors.New("bus: unknown driver")
	ErrEnvelopeVersion   = errors.New("event: unsupported envelope version")
	ErrEnvelopeType      = errors.New("event: unexpected envelope type")
	ErrBatchQueueFull    = errors.New("batch: queue full")
	ErrBatchClosed       = errors.New("batch: writer closed")
	ErrBatchNotStarted   = errors.New("batch: writer not started")
	ErrBatchStarted      = errors.New("batch: writer already started")
	ErrBatchNilSink      = errors.New("batch: nil sink")
)
