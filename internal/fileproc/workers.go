package fileproc

import (
	"os"
	"runtime"
)

// CI worker share is lower than local: shared runners penalize
// oversubscription harder than developer machines do.
const (
	ciWorkerPercent    = 50
	localWorkerPercent = 75
)

// WorkerCount resolves the worker count for a file fan-out. An explicit
// override is honored but clamped to the core count. Otherwise half the
// cores are used on CI and three quarters locally, never less than one.
func WorkerCount(override int) int {
	cores := runtime.NumCPU()

	if override > 0 {
		if override > cores {
			return cores
		}
		return override
	}

	percent := localWorkerPercent
	if inCI() {
		percent = ciWorkerPercent
	}

	workers := cores * percent / 100
	if workers < 1 {
		workers = 1
	}
	return workers
}

// inCI detects a continuous-integration environment.
func inCI() bool {
	return os.Getenv("CI") != ""
}
