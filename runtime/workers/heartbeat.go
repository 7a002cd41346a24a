package workers

import (
	"chat-hub/observability"
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HeartbeatWorker samples this process (RSS, CPU, status) at a fixed
// interval and stores the result in the monitor.
type HeartbeatWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, monitor *observability.Monitor, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, monitor: monitor, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	w.log.Info("Starting heartbeat worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}
			w.monitor.UpdateProcess(stats)
			w.log.Debug("Heartbeat", "rss", stats.RSSBytes, "cpu", stats.CPUPercent,
				"status", stats.Status, "goroutines", stats.Goroutines)
		}
	}
}

// selfStats reads memory, CPU and OS status for p.
func selfStats(p *process.Process) (observability.ProcessStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return observability.ProcessStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return observability.ProcessStats{}, err
	}
	status, err := p.Status()
	if err != nil {
		return observability.ProcessStats{}, err
	}
	return observability.ProcessStats{
		RSSBytes:   memInfo.RSS,
		CPUPercent: cpuPercent,
		Status:     status,
		Goroutines: goruntime.NumGoroutine(),
		SampledAt:  time.Now().UTC(),
	}, nil
}
