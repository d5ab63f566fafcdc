//go:build !linux

package process

import "os"

func maxRSSKiB(_ *os.ProcessState) (uint64, bool) {
	return 0, false
}
