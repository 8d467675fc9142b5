package obs

import (
	"sync/atomic"
	"time"
)

// Sequence hands out monotonically increasing event sequence numbers.
type Sequence struct {
	next uint64
}

// NewSequence returns a sequence seeded with the given value. A zero seed
// starts from the current wall clock so restarts keep increasing.
func NewSequence(seed uint64) *Sequence {
	if seed == 0 {
		seed = uint64(time.Now().UTC().UnixNano())
	}
	return &Sequence{next: seed}
}

// Next returns the next sequence number.
func (s *Sequence) Next() uint64 {
	if s == nil {
		return 0
	}
	return atomic.AddUint64(&s.next, 1)
}
