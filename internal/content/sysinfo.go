package content

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// SampleInterval is how often system stats are refreshed.
const SampleInterval = time.Second

// HistoryLen is how many CPU samples the graph keeps.
const HistoryLen = 60

// Stats is one system sample.
type Stats struct {
	At         time.Time
	CPUPercent float64
	MemUsed    uint64
	MemTotal   uint64
	MemPercent float64
	Host       HostInfo
}

// HostInfo is the static part of a sample.
type HostInfo struct {
	Hostname string
	Platform string
	Kernel   string
	Uptime   time.Duration
	Procs    uint64
}

// StatsMsg carries a sample into the Update loop.
type StatsMsg struct {
	Stats Stats
	Err   error
}

// Sample reads CPU, memory and host information. Partial failures still
// return what could be read, joined with the errors.
func Sample(ctx context.Context) (Stats, error) {
	s := Stats{At: time.Now()}
	var errs []error

	if pct, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		errs = append(errs, err)
	} else if len(pct) > 0 {
		s.CPUPercent = pct[0]
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, err)
	} else {
		s.MemUsed, s.MemTotal, s.MemPercent = vm.Used, vm.Total, vm.UsedPercent
	}

	if info, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, err)
	} else {
		s.Host = HostInfo{
			Hostname: info.Hostname,
			Platform: info.Platform + " " + info.PlatformVersion,
			Kernel:   info.KernelVersion,
			Uptime:   time.Duration(info.Uptime) * time.Second,
			Procs:    info.Procs,
		}
	}
	return s, errors.Join(errs...)
}

// SampleCmd samples after d, off the Update goroutine.
func SampleCmd(ctx context.Context, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		s, err := Sample(ctx)
		return StatsMsg{Stats: s, Err: err}
	})
}
