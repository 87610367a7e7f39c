package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"convohub/observability"

	"github.com/shirou/gopsutil/process"
)

// StatsReporterWorker refreshes the monitoring snapshot and logs engine
// and process health at a fixed interval.
type StatsReporterWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewStatsReporterWorker(
	log *slog.Logger,
	monitoring *observability.MonitoringManager,
	interval time.Duration,
) *StatsReporterWorker {
	return &StatsReporterWorker{
		log:        log,
		monitoring: monitoring,
		interval:   interval,
	}
}

func (w *StatsReporterWorker) Run(ctx context.Context) error {
	w.log.Info("Starting stats reporter worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.monitoring.Snapshot()
			stats := w.monitoring.GetLatest()

			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			w.log.Info("Engine stats",
				"resolutions", stats.Resolutions,
				"created", stats.ConversationsCreated,
				"conflicts_absorbed", stats.ConflictsAbsorbed,
				"listings", stats.Listings,
				"integrity_exclusions", stats.IntegrityExclusions,
				"alloc_mem_mb", stats.AllocMemMb,
				"rss_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

// getSelfStats retrieves memory and CPU metrics for the given process.
func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpu, nil
}
