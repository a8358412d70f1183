package adapters

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"sprinkler-controller/application"

	"github.com/matishsiao/goInfo"
)

// SysInfo supplies the telemetry readings for the health report: process
// uptime, a free-memory estimate from the Go runtime, the wireless link
// quality when the host has one, and a stable host-derived chip id.
type SysInfo struct {
	startedAt time.Time
	chipID    string
}

func NewSysInfo() *SysInfo {
	chipID := "sprinkler-unknown"
	if gi, err := goInfo.GetInfo(); err == nil && gi.Hostname != "" {
		chipID = fmt.Sprintf("sprinkler-%s", gi.Hostname)
	}

	return &SysInfo{
		startedAt: time.Now(),
		chipID:    chipID,
	}
}

func (s *SysInfo) Uptime() time.Duration {
	return time.Since(s.startedAt)
}

// FreeHeap estimates reclaimable heap as the idle span bytes held by the
// runtime. Close enough for a trend line; this is not an accounting tool.
func (s *SysInfo) FreeHeap() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapIdle
}

// LinkQuality reads the signal level from /proc/net/wireless. Hosts without
// a wireless interface report 0.
func (s *SysInfo) LinkQuality() int {
	f, err := os.Open("/proc/net/wireless")
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line <= 2 {
			// header lines
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[3], "."), 64)
		if err != nil {
			continue
		}
		return int(level)
	}
	return 0
}

func (s *SysInfo) ChipID() string {
	return s.chipID
}

var _ application.Telemetry = &SysInfo{}
