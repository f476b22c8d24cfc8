package lotsizing

import (
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// SystemInfo describes the machine a batch ran on.
type SystemInfo struct {
	Platform string
	CPU      string
	Cores    int
	RAM      string
}

// CollectSystemInfo queries the current host. Fields that cannot be
// determined are left empty.
func CollectSystemInfo() SystemInfo {
	var info SystemInfo

	if hostStat, err := host.Info(); err == nil {
		info.Platform = strings.TrimSpace(hostStat.Platform + " " + hostStat.PlatformVersion)
	}
	if cpuStat, err := cpu.Info(); err == nil && len(cpuStat) > 0 {
		info.CPU = cpuStat[0].ModelName
	}
	if cores, err := cpu.Counts(true); err == nil {
		info.Cores = cores
	}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		info.RAM = fmt.Sprintf("%d GB", vmStat.Total/1024/1024/1024)
	}

	return info
}

func (info SystemInfo) IsZero() bool {
	return info == SystemInfo{}
}

func (info SystemInfo) String() string {
	var parts []string
	if info.CPU != "" {
		if info.Cores > 0 {
			parts = append(parts, fmt.Sprintf("%s (%d threads)", info.CPU, info.Cores))
		} else {
			parts = append(parts, info.CPU)
		}
	}
	if info.RAM != "" {
		parts = append(parts, info.RAM+" RAM")
	}
	if info.Platform != "" {
		parts = append(parts, info.Platform)
	}
	return strings.Join(parts, ", ")
}
