package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestNewEventStats(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		capacity int
		want     EventStats
	}{
		{"empty", 0, 10, EventStats{EventID: 1, Total: 0, Remaining: 10, PercentUsed: 0}},
		{"partial", 1, 3, EventStats{EventID: 1, Total: 1, Remaining: 2, PercentUsed: 33.33}},
		{"two thirds", 2, 3, EventStats{EventID: 1, Total: 2, Remaining: 1, PercentUsed: 66.67}},
		{"full", 2, 2, EventStats{EventID: 1, Total: 2, Remaining: 0, PercentUsed: 100}},
		{"over capacity clamps remaining", 5, 4, EventStats{EventID: 1, Total: 5, Remaining: 0, PercentUsed: 125}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewEventStats(1, tt.total, tt.capacity))
		})
	}
}

func TestNewEventStatsProperties(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		capacity := rapid.IntRange(1, 1000).Draw(r, "capacity")
		total := rapid.IntRange(0, capacity).Draw(r, "total")

		s := NewEventStats(7, total, capacity)

		if s.Total+s.Remaining != capacity {
			r.Fatalf("total %d + remaining %d != capacity %d", s.Total, s.Remaining, capacity)
		}
		if s.PercentUsed < 0 || s.PercentUsed > 100 {
			r.Fatalf("percent out of range: %v", s.PercentUsed)
		}
		exact := float64(total) / float64(capacity) * 100
		if diff := s.PercentUsed - exact; diff > 0.005+1e-9 || diff < -0.005-1e-9 {
			r.Fatalf("percent %v not within rounding of %v", s.PercentUsed, exact)
		}
	})
}

func TestEventIsPast(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	e := Event{DateTime: now}

	assert.True(t, e.IsPast(now), "starting now counts as past")
	assert.True(t, e.IsPast(now.Add(time.Second)))
	assert.False(t, e.IsPast(now.Add(-time.Second)))
}
