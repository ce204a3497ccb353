package workers

import (
	"chat-relay/contract"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*ChannelCapacityWorker)(nil)

// ChannelCapacityWorker periodically reports the fill level of bounded
// mailboxes and the relay's own memory and CPU usage.
// Reading Len and Cap is non-blocking, so sampling never interferes with the
// actors that own the mailboxes. A mailbox above lowCapacityThreshold percent
// is reported as a warning: a full mailbox stalls its senders.
type ChannelCapacityWorker struct {
	log                  *slog.Logger
	gauges               []contract.Gauge
	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewChannelCapacityWorker(log *slog.Logger, gauges []contract.Gauge,
	metricInterval time.Duration, lowCapacityThreshold int) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:                  log,
		gauges:               gauges,
		metricInterval:       metricInterval,
		lowCapacityThreshold: lowCapacityThreshold,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Warn("Process stats unavailable", "error", err)
		p = nil
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping capacity sampling")
			return nil
		case <-ticker.C:
			for _, g := range w.gauges {
				w.sample(g)
			}
			if p != nil {
				w.reportProcess(p)
			}
		}
	}
}

func (w *ChannelCapacityWorker) sample(g contract.Gauge) {
	capacity := g.Cap()
	length := g.Len()
	if capacity == 0 {
		return
	}
	percent := length * 100 / capacity
	if percent >= w.lowCapacityThreshold {
		w.log.Warn("Mailbox nearly full", "mailbox", g.Name(), "length", length, "capacity", capacity, "percent", percent)
		return
	}
	w.log.Debug("Mailbox capacity", "mailbox", g.Name(), "length", length, "capacity", capacity, "percent", percent)
}

func (w *ChannelCapacityWorker) reportProcess(p *process.Process) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		w.log.Debug("Failed to collect memory stats", "error", err)
		return
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		w.log.Debug("Failed to collect cpu stats", "error", err)
		return
	}
	w.log.Info("Process stats", "rss_bytes", memInfo.RSS, "cpu_percent", cpuPercent)
}
