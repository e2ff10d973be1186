package fileproc

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerCount_Override(t *testing.T) {
	cores := runtime.NumCPU()

	assert.Equal(t, 1, WorkerCount(1))
	assert.Equal(t, cores, WorkerCount(cores+100), "override is clamped to core count")
}

func TestWorkerCount_AutoLocal(t *testing.T) {
	t.Setenv("CI", "")

	cores := runtime.NumCPU()
	want := cores * localWorkerPercent / 100
	if want < 1 {
		want = 1
	}

	assert.Equal(t, want, WorkerCount(0))
}

func TestWorkerCount_AutoCI(t *testing.T) {
	t.Setenv("CI", "true")

	cores := runtime.NumCPU()
	want := cores * ciWorkerPercent / 100
	if want < 1 {
		want = 1
	}

	assert.Equal(t, want, WorkerCount(0))
}

func TestWorkerCount_NeverZero(t *testing.T) {
	assert.GreaterOrEqual(t, WorkerCount(0), 1)
	assert.GreaterOrEqual(t, WorkerCount(-5), 1)
}
