// Package rating maintains a product's running rating mean without
// rescanning its reviews.
package rating

import "math"

const (
	Min = 1
	Max = 5
)

// Aggregate is the running mean and sample count.
type Aggregate struct {
	Avg   float64
	Count int64
}

// Valid reports whether r is an accepted star rating.
func Valid(r int) bool {
	return r >= Min && r <= Max
}

// Apply adds one rating.
func (a Aggregate) Apply(r int) Aggregate {
	if a.Count <= 0 {
		return Aggregate{Avg: float64(r), Count: 1}
	}
	n := a.Count + 1
	return Aggregate{
		Avg:   a.Avg + (float64(r)-a.Avg)/float64(n),
		Count: n,
	}
}

// Replace swaps an existing rating for a new one.
func (a Aggregate) Replace(old, next int) Aggregate {
	if a.Count <= 0 {
		return a.Apply(next)
	}
	return Aggregate{
		Avg:   clamp(a.Avg + float64(next-old)/float64(a.Count)),
		Count: a.Count,
	}
}

// Remove drops one rating. Removing the last rating resets the aggregate.
func (a Aggregate) Remove(r int) Aggregate {
	if a.Count <= 1 {
		return Aggregate{}
	}
	n := a.Count - 1
	return Aggregate{
		Avg:   clamp((a.Avg*float64(a.Count) - float64(r)) / float64(n)),
		Count: n,
	}
}

// Rounded is the mean rounded to two decimals for display.
func (a Aggregate) Rounded() float64 {
	return math.Round(a.Avg*100) / 100
}

func clamp(avg float64) float64 {
	switch {
	case avg < Min:
		return Min
	case avg > Max:
		return Max
	default:
		return avg
	}
}
