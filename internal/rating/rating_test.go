package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyMatchesMean(t *testing.T) {
	var agg Aggregate
	for _, r := range []int{5, 4, 3, 5, 1} {
		agg = agg.Apply(r)
	}
	assert.Equal(t, int64(5), agg.Count)
	assert.InDelta(t, 3.6, agg.Avg, 1e-9)
}

func TestReplace(t *testing.T) {
	agg := Aggregate{}.Apply(2).Apply(4)
	agg = agg.Replace(2, 5)
	assert.Equal(t, int64(2), agg.Count)
	assert.InDelta(t, 4.5, agg.Avg, 1e-9)
}

func TestReplaceOnEmptyActsAsApply(t *testing.T) {
	agg := Aggregate{}.Replace(3, 4)
	assert.Equal(t, Aggregate{Avg: 4, Count: 1}, agg)
}

func TestRemove(t *testing.T) {
	agg := Aggregate{}.Apply(5).Apply(3).Apply(1)
	agg = agg.Remove(1)
	assert.Equal(t, int64(2), agg.Count)
	assert.InDelta(t, 4.0, agg.Avg, 1e-9)

	agg = agg.Remove(5).Remove(3)
	assert.Equal(t, Aggregate{}, agg)
}

func TestRounded(t *testing.T) {
	agg := Aggregate{}.Apply(5).Apply(4).Apply(4)
	assert.Equal(t, 4.33, agg.Rounded())
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(0))
	assert.True(t, Valid(1))
	assert.True(t, Valid(5))
	assert.False(t, Valid(6))
}
