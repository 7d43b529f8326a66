package cmd

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"modpack-server-installer/logger"
	"modpack-server-installer/modpacks"
)

// checkMemory warns when the machine has less RAM than the version
// recommends. It never blocks the install.
func checkMemory(v *modpacks.Version) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		logger.Log.Debugw("Unable to read system memory", zap.Error(err))
		return
	}
	if msg := memoryWarning(vm.Total, v.RecommendedRAM); msg != "" {
		logger.Log.Warn(msg)
	}
}

// memoryWarning returns a warning when totalBytes is below recommendedMB.
func memoryWarning(totalBytes uint64, recommendedMB int) string {
	if recommendedMB <= 0 {
		return ""
	}
	totalMB := totalBytes / (1024 * 1024)
	if totalMB >= uint64(recommendedMB) {
		return ""
	}
	return fmt.Sprintf("This machine has %d MB of RAM but the pack recommends %d MB; the server may not start", totalMB, recommendedMB)
}
