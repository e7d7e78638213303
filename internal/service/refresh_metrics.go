package service

import (
	"fmt"
	"sync"
	"time"
)

// RefreshMetrics tracks statistics about a cache refresh run
type RefreshMetrics struct {
	mu             sync.RWMutex
	StartTime      time.Time
	Duration       time.Duration
	TotalPlayers   int
	UpdatedPlayers int
	UpToDate       int
	GamesAdded     int
	SkippedUnknown int
	Errors         int
}

// NewRefreshMetrics creates a new metrics tracker
func NewRefreshMetrics() *RefreshMetrics {
	return &RefreshMetrics{StartTime: time.Now()}
}

// Reset resets all metrics
func (m *RefreshMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalPlayers = 0
	m.UpdatedPlayers = 0
	m.UpToDate = 0
	m.GamesAdded = 0
	m.SkippedUnknown = 0
	m.Errors = 0
}

// RecordUpdated records a player whose cache gained games
func (m *RefreshMetrics) RecordUpdated(added int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdatedPlayers++
	m.GamesAdded += added
}

// RecordUpToDate records a player whose cache needed no changes
func (m *RefreshMetrics) RecordUpToDate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpToDate++
}

// RecordSkippedUnknown records a cached player name the directory cannot resolve
func (m *RefreshMetrics) RecordSkippedUnknown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SkippedUnknown++
}

// RecordError increments the error count
func (m *RefreshMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// String returns a formatted string representation of metrics
func (m *RefreshMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"RefreshMetrics{Total=%d, Updated=%d, UpToDate=%d, GamesAdded=%d, SkippedUnknown=%d, Errors=%d, Duration=%v}",
		m.TotalPlayers,
		m.UpdatedPlayers,
		m.UpToDate,
		m.GamesAdded,
		m.SkippedUnknown,
		m.Errors,
		m.Duration,
	)
}
