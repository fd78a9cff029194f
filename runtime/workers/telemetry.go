package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"

	"collabhub/contract"
)

// TelemetryWorker periodically logs process health (CPU, RSS, goroutines)
// and channel occupancy. Purely internal observability; failures to sample
// are logged and skipped, never fatal.
type TelemetryWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, registry contract.IRegistry, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, registry: registry, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping telemetry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sample(p)
		}
	}
}

func (w *TelemetryWorker) sample(p *process.Process) {
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		w.log.Debug("CPU sample failed", "error", err)
		return
	}
	memInfo, err := p.MemoryInfo()
	if err != nil {
		w.log.Debug("Memory sample failed", "error", err)
		return
	}

	w.log.Info("Telemetry",
		"cpu_percent", cpuPercent,
		"rss_mb", memInfo.RSS/(1024*1024),
		"goroutines", runtime.NumGoroutine(),
		"connected_sessions", w.registry.Size())
}
