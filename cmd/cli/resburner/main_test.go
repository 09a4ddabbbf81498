package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/core-tools/resburner/pkg/workload"

	flags "github.com/jessevdk/go-flags"
)

func parse(t *testing.T, args ...string) (*flags.Parser, *flagOptions) {
	var opts flagOptions
	parser := flags.NewParser(&opts, flags.HelpFlag)
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return parser, &opts
}

func TestApplyFlags_OverridesOnlySetFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resburner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workload:
  iterations: 5
  loops: 10
  memory_load: 1K
logging:
  console_level: error
`), 0644))

	parser, opts := parse(t, "--config", path, "--loops", "20", "--disk-write-load", "4MiB", "--log-file", "", "-v")

	config, err := loadFileConfig(opts.ConfigFile, 8)
	require.NoError(t, err)
	applyFlags(parser, opts, config)

	w := config.Workload
	assert.Equal(t, 5, w.Iterations)
	assert.Equal(t, 8, w.Processes)
	assert.Equal(t, 20, w.Loops)
	assert.Equal(t, workload.ByteSize(1024), w.MemoryLoad)
	assert.Equal(t, workload.ByteSize(4*1024*1024), w.DiskWriteLoad)
	assert.Equal(t, workload.DefaultCPULoad, w.CPULoad)
	assert.Equal(t, workload.DiskBufferDefault, w.DiskBuffer)

	assert.Equal(t, "info", config.Logging.ConsoleLevel)
	assert.Empty(t, config.Logging.File.Path)
}

func TestApplyFlags_ZeroValuesOverride(t *testing.T) {
	parser, opts := parse(t, "--iterations", "0", "--disk-buffer", "0", "--iterations=-1")

	config, err := loadFileConfig("", 2)
	require.NoError(t, err)
	applyFlags(parser, opts, config)

	assert.Equal(t, workload.Forever, config.Workload.Iterations)
	assert.Equal(t, workload.DiskBufferNone, config.Workload.DiskBuffer)
	assert.Equal(t, "warn", config.Logging.ConsoleLevel)
}

func TestParse_InvalidByteSize(t *testing.T) {
	var opts flagOptions
	parser := flags.NewParser(&opts, flags.HelpFlag)
	_, err := parser.ParseArgs([]string{"--memory-load", "lots"})
	assert.Error(t, err)
}
