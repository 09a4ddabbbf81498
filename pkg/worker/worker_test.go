package worker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/resourceusage"
	"github.com/core-tools/resburner/pkg/workload"
)

type MockMonitor struct {
	mock.Mock
}

func (m *MockMonitor) GetProcessUsage(pid int) (*resourceusage.ResourceUsage, error) {
	args := m.Called(pid)
	usage, _ := args.Get(0).(*resourceusage.ResourceUsage)
	return usage, args.Error(1)
}

func newMonitor() *MockMonitor {
	monitor := &MockMonitor{}
	monitor.On("GetProcessUsage", os.Getpid()).Return(&resourceusage.ResourceUsage{
		Timestamp: time.Now(),
		CPUUser:   0.5,
		MemoryRSS: 4 * 1024 * 1024,
	}, nil)
	return monitor
}

func newObservedLogger() (logcollection.StructuredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logcollection.NewZapAdapter(zap.New(core)), logs
}

func testConfig(t *testing.T) *workload.Config {
	dir := t.TempDir()
	config := workload.DefaultConfig(1)
	config.Loops = 10
	config.CPULoad = 100
	config.MemoryLoad = 32
	config.DiskWriteDestination = filepath.Join(dir, "out-{i}-{p}.dat")
	config.DiskReadSource = filepath.Join(dir, "source-{p}.dat")
	return &config
}

func usageReports(logs *observer.ObservedLogs) []observer.LoggedEntry {
	return logs.FilterMessage("resource usage").All()
}

func TestNewChunk(t *testing.T) {
	assert.Equal(t, []byte("7    "), newChunk(7, 5))
	assert.Equal(t, []byte("123"), newChunk(12345, 3))
	assert.Equal(t, []byte("10"), newChunk(10, 2))
	assert.Empty(t, newChunk(1, 0))
}

func TestBurnCPU(t *testing.T) {
	assert.Equal(t, 0, burnCPU(0))
	assert.Equal(t, 1000, burnCPU(1000))
}

func TestBurnCPU_DurationGrowsWithLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test")
	}

	measure := func(increments int) time.Duration {
		best := time.Duration(1<<63 - 1)
		for i := 0; i < 5; i++ {
			start := time.Now()
			cpuSink += burnCPU(increments)
			if elapsed := time.Since(start); elapsed < best {
				best = elapsed
			}
		}
		return best
	}

	small := measure(1_000_000)
	large := measure(100_000_000)
	assert.Greater(t, large, small)
}

func TestWorker_RetainsOneChunkPerLoop(t *testing.T) {
	config := testConfig(t)
	logger, logs := newObservedLogger()
	monitor := newMonitor()

	w := New(config, workload.WorkerContext{Iteration: 0, Worker: 0}, monitor, logger)
	report, err := w.Run()
	require.NoError(t, err)

	retained := w.Retained()
	require.Len(t, retained, config.Loops)
	assert.Equal(t, config.Loops, report.RetainedChunks)

	for i, chunk := range retained {
		assert.Len(t, chunk, config.MemoryLoad.Int())
		assert.Equal(t, newChunk(i+1, config.MemoryLoad.Int()), chunk)
	}
	// Every chunk is its own allocation
	assert.NotSame(t, &retained[0][0], &retained[1][0])

	reports := usageReports(logs)
	require.Len(t, reports, 1)
	fields := reports[0].ContextMap()
	assert.Equal(t, int64(config.Loops), fields["loops"])
	assert.Equal(t, 0.5, fields["cpu_user_seconds"])
	assert.Equal(t, uint64(4*1024*1024), fields["memory_rss"])
	monitor.AssertExpectations(t)
}

func TestWorker_RetainedSizeIsLinear(t *testing.T) {
	headerSize := int(unsafe.Sizeof([]byte(nil)))

	retainedBytes := func(loops int, memoryLoad workload.ByteSize) int {
		config := testConfig(t)
		config.Loops = loops
		config.MemoryLoad = memoryLoad
		report, err := New(config, workload.WorkerContext{}, newMonitor(), logcollection.NewNopLogger()).Run()
		require.NoError(t, err)
		return report.RetainedBytes
	}

	assert.Equal(t, headerSize+20*(headerSize+100), retainedBytes(20, 100))
	assert.Equal(t, 20*100, retainedBytes(20, 200)-retainedBytes(20, 100))

	previous := 0
	for _, loops := range []int{0, 1, 5, 50} {
		size := retainedBytes(loops, 64)
		assert.GreaterOrEqual(t, size, previous)
		previous = size
	}
}

func TestWorker_ZeroLoops(t *testing.T) {
	config := testConfig(t)
	config.Loops = 0
	config.DiskWriteLoad = 1024
	logger, logs := newObservedLogger()

	report, err := New(config, workload.WorkerContext{}, newMonitor(), logger).Run()
	require.NoError(t, err)

	assert.Equal(t, 0, report.RetainedChunks)
	assert.Len(t, usageReports(logs), 1)

	// The write handle is opened lazily, so nothing is created
	_, err = os.Stat(workload.WorkerContext{}.ResolvePath(config.DiskWriteDestination))
	assert.True(t, os.IsNotExist(err))
}

func TestWorker_DiskWriteSize(t *testing.T) {
	tests := []struct {
		name   string
		buffer int
	}{
		{"default_buffer", workload.DiskBufferDefault},
		{"unbuffered", workload.DiskBufferNone},
		{"small_buffer", 100},
		{"large_buffer", 1 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig(t)
			config.Loops = 7
			config.DiskWriteLoad = 70001
			config.DiskBuffer = tt.buffer
			wctx := workload.WorkerContext{Iteration: 3, Worker: 1}

			report, err := New(config, wctx, newMonitor(), logcollection.NewNopLogger()).Run()
			require.NoError(t, err)

			path := wctx.ResolvePath(config.DiskWriteDestination)
			assert.True(t, strings.HasSuffix(path, "out-3-1.dat"))
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, int64(7*70001), info.Size())
			assert.Equal(t, int64(7*70001), report.BytesWritten)
		})
	}
}

func TestWorker_DiskWriteTruncatesExistingFile(t *testing.T) {
	config := testConfig(t)
	config.Loops = 2
	config.DiskWriteLoad = 10
	wctx := workload.WorkerContext{}
	path := wctx.ResolvePath(config.DiskWriteDestination)
	require.NoError(t, os.WriteFile(path, make([]byte, 1000), 0644))

	_, err := New(config, wctx, newMonitor(), logcollection.NewNopLogger()).Run()
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(20), info.Size())
}

func TestWorker_DiskReadWrapsAround(t *testing.T) {
	for _, buffer := range []int{workload.DiskBufferDefault, workload.DiskBufferNone, 3} {
		config := testConfig(t)
		config.Loops = 4
		config.DiskReadLoad = 25
		config.DiskBuffer = buffer
		wctx := workload.WorkerContext{Worker: 2}
		require.NoError(t, os.WriteFile(wctx.ResolvePath(config.DiskReadSource), []byte("0123456789"), 0644))

		report, err := New(config, wctx, newMonitor(), logcollection.NewNopLogger()).Run()
		require.NoError(t, err)

		assert.Equal(t, int64(4*25), report.BytesRead)
		// 100 bytes out of a 10 byte file
		assert.GreaterOrEqual(t, report.ReadRewinds, 9)
	}
}

func TestWorker_DiskReadWithoutWraparound(t *testing.T) {
	config := testConfig(t)
	config.Loops = 2
	config.DiskReadLoad = 10
	wctx := workload.WorkerContext{}
	require.NoError(t, os.WriteFile(wctx.ResolvePath(config.DiskReadSource), make([]byte, 1000), 0644))

	report, err := New(config, wctx, newMonitor(), logcollection.NewNopLogger()).Run()
	require.NoError(t, err)

	assert.Equal(t, int64(20), report.BytesRead)
	assert.Equal(t, 0, report.ReadRewinds)
}

func TestWorker_ReadSourcePrecondition(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, path string)
	}{
		{
			name:  "missing",
			setup: func(t *testing.T, path string) {},
		},
		{
			name: "empty",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.WriteFile(path, nil, 0644))
			},
		},
		{
			name: "directory",
			setup: func(t *testing.T, path string) {
				require.NoError(t, os.Mkdir(path, 0755))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig(t)
			config.DiskReadLoad = 10
			config.DiskWriteLoad = 10
			wctx := workload.WorkerContext{Worker: 1}
			tt.setup(t, wctx.ResolvePath(config.DiskReadSource))

			logger, logs := newObservedLogger()
			monitor := &MockMonitor{}
			w := New(config, wctx, monitor, logger)

			report, err := w.Run()
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.IsValidationError(err))
			assert.Equal(t, ExitCodeConfiguration, ExitCode(err))

			// No loop ran and no report was emitted
			assert.Empty(t, w.Retained())
			assert.Empty(t, usageReports(logs))
			_, statErr := os.Stat(wctx.ResolvePath(config.DiskWriteDestination))
			assert.True(t, os.IsNotExist(statErr))
			monitor.AssertNotCalled(t, "GetProcessUsage", mock.Anything)
		})
	}
}

func TestWorker_ReadSourceCheckedPerWorker(t *testing.T) {
	config := testConfig(t)
	config.Loops = 1
	config.DiskReadLoad = 4
	good := workload.WorkerContext{Worker: 0}
	bad := workload.WorkerContext{Worker: 1}
	require.NoError(t, os.WriteFile(good.ResolvePath(config.DiskReadSource), []byte("data"), 0644))
	require.NoError(t, os.WriteFile(bad.ResolvePath(config.DiskReadSource), nil, 0644))

	_, err := New(config, good, newMonitor(), logcollection.NewNopLogger()).Run()
	assert.NoError(t, err)

	_, err = New(config, bad, newMonitor(), logcollection.NewNopLogger()).Run()
	assert.True(t, errors.IsValidationError(err))
}

func TestWorker_ReadSourceIgnoredWhenReadDisabled(t *testing.T) {
	config := testConfig(t)
	config.DiskReadLoad = 0

	_, err := New(config, workload.WorkerContext{}, newMonitor(), logcollection.NewNopLogger()).Run()
	assert.NoError(t, err)
}

func TestWorker_WriteFailureIsIOError(t *testing.T) {
	config := testConfig(t)
	config.DiskWriteLoad = 10
	config.DiskWriteDestination = filepath.Join(t.TempDir(), "missing-dir", "out.dat")
	logger, logs := newObservedLogger()

	report, err := New(config, workload.WorkerContext{}, newMonitor(), logger).Run()
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsIOError(err))
	assert.Equal(t, ExitCodeFailure, ExitCode(err))
	assert.Empty(t, usageReports(logs))
}

func TestWorker_MeasurementFailureStillReports(t *testing.T) {
	config := testConfig(t)
	monitor := &MockMonitor{}
	monitor.On("GetProcessUsage", os.Getpid()).Return(nil, errors.NewNotFoundError("process not found", nil))
	logger, logs := newObservedLogger()

	report, err := New(config, workload.WorkerContext{}, monitor, logger).Run()
	require.NoError(t, err)
	assert.Nil(t, report.Usage)

	reports := usageReports(logs)
	require.Len(t, reports, 1)
	assert.NotContains(t, reports[0].ContextMap(), "memory_rss")
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitCodeSuccess, ExitCode(nil))
	assert.Equal(t, ExitCodeConfiguration, ExitCode(errors.NewValidationError("bad", nil)))
	assert.Equal(t, ExitCodeFailure, ExitCode(errors.NewIOError("disk", nil)))
	assert.Equal(t, ExitCodeFailure, ExitCode(errors.NewInternalError("oops", nil)))
}
