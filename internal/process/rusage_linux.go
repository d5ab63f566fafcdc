package process

import (
	"os"
	"syscall"
)

// maxRSSKiB reads ru_maxrss, which Linux reports in KiB.
func maxRSSKiB(state *os.ProcessState) (uint64, bool) {
	if state == nil {
		return 0, false
	}
	usage, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || usage.Maxrss <= 0 {
		return 0, false
	}
	return uint64(usage.Maxrss), true
}
