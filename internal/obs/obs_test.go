package obs

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSequenceMonotonic(t *testing.T) {
	seq := NewSequence(10)
	assert.Equal(t, uint64(11), seq.Next())
	assert.Equal(t, uint64(12), seq.Next())

	var nilSeq *Sequence
	assert.Zero(t, nilSeq.Next())
}

func TestSequenceConcurrent(t *testing.T) {
	seq := NewSequence(1)
	var wg sync.WaitGroup
	seen := sync.Map{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, dup := seen.LoadOrStore(seq.Next(), struct{}{}); dup {
					t.Errorf("duplicate sequence number")
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(801), seq.Next())
}

func TestBatchCounters(t *testing.T) {
	before := testutil.ToFloat64(batchFlushed.WithLabelValues("obs-test"))
	BatchFlushed("obs-test", 3, time.Millisecond)
	BatchFlushed("obs-test", 2, time.Millisecond)
	assert.Equal(t, before+5, testutil.ToFloat64(batchFlushed.WithLabelValues("obs-test")))
}

func TestInFlightGauge(t *testing.T) {
	done := HTTPInFlight()
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsInFlight))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(httpRequestsInFlight))
}
