package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EngineStats aggregates the engine counters for reporting.
type EngineStats struct {
	Resolutions          uint64 `json:"resolutions"`
	ConversationsCreated uint64 `json:"conversations_created"`
	ConflictsAbsorbed    uint64 `json:"conflicts_absorbed"`
	Listings             uint64 `json:"listings"`
	IntegrityExclusions  uint64 `json:"integrity_exclusions"`

	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`
}

// MonitoringManager collects live counters from the services.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats EngineStats

	resolutions          uint64
	conversationsCreated uint64
	conflictsAbsorbed    uint64
	listings             uint64
	integrityExclusions  uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrResolutions() {
	atomic.AddUint64(&mm.resolutions, 1)
}

func (mm *MonitoringManager) IncrConversationsCreated() {
	atomic.AddUint64(&mm.conversationsCreated, 1)
}

// IncrConflictsAbsorbed counts creation races resolved by re-reading
// the winner's row. A steadily climbing value is normal under load; it
// never corresponds to a caller-facing failure.
func (mm *MonitoringManager) IncrConflictsAbsorbed() {
	atomic.AddUint64(&mm.conflictsAbsorbed, 1)
}

func (mm *MonitoringManager) IncrListings() {
	atomic.AddUint64(&mm.listings, 1)
}

func (mm *MonitoringManager) AddIntegrityExclusions(n uint64) {
	atomic.AddUint64(&mm.integrityExclusions, n)
}

// Snapshot refreshes the published stats from the live counters and
// the Go runtime. Counters stay atomic; only the snapshot takes the lock.
func (mm *MonitoringManager) Snapshot() {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats = EngineStats{
		Resolutions:          atomic.LoadUint64(&mm.resolutions),
		ConversationsCreated: atomic.LoadUint64(&mm.conversationsCreated),
		ConflictsAbsorbed:    atomic.LoadUint64(&mm.conflictsAbsorbed),
		Listings:             atomic.LoadUint64(&mm.listings),
		IntegrityExclusions:  atomic.LoadUint64(&mm.integrityExclusions),
		AllocMemMb:           mem.Alloc / 1024 / 1024,
		NumGC:                mem.NumGC,
	}
}

func (mm *MonitoringManager) GetLatest() EngineStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latestStats
}

// StatsMap exposes the snapshot for the debug server dashboard.
func (mm *MonitoringManager) StatsMap() map[string]any {
	stats := mm.GetLatest()
	return map[string]any{
		"resolutions":           stats.Resolutions,
		"conversations_created": stats.ConversationsCreated,
		"conflicts_absorbed":    stats.ConflictsAbsorbed,
		"listings":              stats.Listings,
		"integrity_exclusions":  stats.IntegrityExclusions,
		"alloc_mem_mb":          stats.AllocMemMb,
		"num_gc":                stats.NumGC,
		"refreshed_at":          time.Now().UTC().Format(time.RFC3339),
	}
}
