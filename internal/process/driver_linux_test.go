package process_test

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/programme-lv/cpkit/internal/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// alive treats zombies as dead since they no longer run anything.
func alive(pid int) bool {
	stat, err := os.ReadFile(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return false
	}
	s := string(stat)
	i := strings.LastIndexByte(s, ')')
	if i < 0 || i+2 >= len(s) {
		return false
	}
	return s[i+2] != 'Z'
}

func TestTimeLimitKillsDescendants(t *testing.T) {
	d := process.NewDriver()
	cmd := sh(`sleep 30 & echo $!; wait`)
	cmd.TimeLimit = 300 * time.Millisecond

	res, err := d.Run(context.Background(), cmd, nil)
	require.NoError(t, err)
	require.True(t, res.TimedOut)

	pid, err := strconv.Atoi(strings.TrimSpace(string(res.Stdout)))
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return !alive(pid) }, 2*time.Second, 20*time.Millisecond)
}

func TestPeakMemoryReported(t *testing.T) {
	d := process.NewDriver(process.WithPollInterval(10 * time.Millisecond))
	res, err := d.Run(context.Background(), sh(`sleep 0.1`), nil)
	require.NoError(t, err)
	require.NotNil(t, res.PeakMemoryKiB)
	assert.Greater(t, *res.PeakMemoryKiB, uint64(0))
}
