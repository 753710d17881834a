package core

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemStatus is the operator view served on /internal/status.
type SystemStatus struct {
	Backend  string                    `json:"backend"`
	Dispatch map[string]DispatchCounts `json:"dispatch,omitempty"`
	Memory   struct {
		UsedBytes  uint64 `json:"used_bytes"`
		TotalBytes uint64 `json:"total_bytes"`
	} `json:"memory"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// CollectSystemStatus gathers shared dispatch counters (when Redis is configured), host memory
// and process uptime. Every part is best-effort.
func CollectSystemStatus(ctx context.Context, backend string, stats *RedisStats, startedAt time.Time) SystemStatus {
	st := SystemStatus{Backend: backend}

	if stats != nil {
		if d, err := stats.Overview(ctx); err == nil {
			st.Dispatch = d
		}
	}

	used, total := readMemory(ctx)
	st.Memory.UsedBytes = used
	st.Memory.TotalBytes = total

	if !startedAt.IsZero() {
		st.UptimeSeconds = int64(time.Since(startedAt).Seconds())
	}
	return st
}

// readMemory returns used and total bytes of host memory, zeros when unavailable.
func readMemory(ctx context.Context) (used, total uint64) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("memory stats unavailable")
		return 0, 0
	}
	return vm.Used, vm.Total
}
