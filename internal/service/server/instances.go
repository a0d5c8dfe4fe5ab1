package server

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/oshokin/pose-timer/internal/logger"
)

// binaryName is the executable name of the server.
const binaryName = "pose-timer-server"

// processLister returns the processes of this host.
type processLister func() ([]ps.Process, error)

// otherInstances returns the PIDs of server processes other than this one.
func otherInstances(list processLister, self int) ([]int, error) {
	processes, err := list()
	if err != nil {
		return nil, err
	}

	var pids []int

	for _, process := range processes {
		if process.Pid() == self {
			continue
		}

		name := strings.TrimSuffix(filepath.Base(process.Executable()), ".exe")
		if name != binaryName {
			continue
		}

		pids = append(pids, process.Pid())
	}

	return pids, nil
}

// warnOtherInstances logs a warning when another server runs on this host.
// Two servers on different ports would each run their own session timer.
func warnOtherInstances(ctx context.Context) {
	pids, err := otherInstances(ps.Processes, os.Getpid())
	if err != nil {
		logger.DebugKV(ctx, "Cannot list processes", "error", err)

		return
	}

	if len(pids) > 0 {
		logger.WarnKV(ctx, "Another pose-timer-server is running on this host", "pids", pids)
	}
}
