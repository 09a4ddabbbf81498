package workload

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/logging"
)

// Forever is the Iterations value that repeats iterations until the
// process is terminated from outside.
const Forever = -1

const (
	// DiskBufferDefault selects the platform default I/O buffer size
	DiskBufferDefault = -1
	// DiskBufferNone disables I/O buffering
	DiskBufferNone = 0
)

const (
	DefaultIterations           = 1
	DefaultLoops                = 100000
	DefaultCPULoad              = 1000
	DefaultMemoryLoad           = ByteSize(10000)
	DefaultDiskWriteDestination = "/tmp/resources-burner-{i}-{p}.dat"
	DefaultDiskReadSource       = "/tmp/resources-burner-source.dat"
)

// Config is the workload shared read-only by the orchestrator and every
// worker of a run.
type Config struct {
	Iterations           int      `yaml:"iterations"`
	Processes            int      `yaml:"processes"`
	Loops                int      `yaml:"loops"`
	CPULoad              int      `yaml:"cpu_load"`
	MemoryLoad           ByteSize `yaml:"memory_load"`
	DiskWriteLoad        ByteSize `yaml:"disk_write_load"`
	DiskReadLoad         ByteSize `yaml:"disk_read_load"`
	DiskWriteDestination string   `yaml:"disk_write_destination"`
	DiskReadSource       string   `yaml:"disk_read_source"`
	DiskBuffer           int      `yaml:"disk_buffer"`
}

// FileConfig is the layout of the optional YAML configuration file
type FileConfig struct {
	Workload Config         `yaml:"workload"`
	Logging  logging.Config `yaml:"logging"`
}

// DefaultConfig returns the defaults; processes is the host's CPU count
func DefaultConfig(hostCPUs int) Config {
	if hostCPUs < 1 {
		hostCPUs = 1
	}
	return Config{
		Iterations:           DefaultIterations,
		Processes:            hostCPUs,
		Loops:                DefaultLoops,
		CPULoad:              DefaultCPULoad,
		MemoryLoad:           DefaultMemoryLoad,
		DiskWriteDestination: DefaultDiskWriteDestination,
		DiskReadSource:       DefaultDiskReadSource,
		DiskBuffer:           DiskBufferDefault,
	}
}

func DefaultFileConfig(hostCPUs int) FileConfig {
	return FileConfig{
		Workload: DefaultConfig(hostCPUs),
		Logging:  logging.DefaultConfig(),
	}
}

// LoadConfigFromFile reads filename on top of the defaults, so keys left
// out of the file keep their default values.
func LoadConfigFromFile(filename string, hostCPUs int) (*FileConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.NewIOError("failed to read configuration file", err).WithContext("filename", filename)
	}

	config := DefaultFileConfig(hostCPUs)
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.NewValidationError("failed to parse YAML configuration", err).WithContext("filename", filename)
	}

	return &config, nil
}

// Infinite reports whether iterations repeat until terminated
func (c *Config) Infinite() bool {
	return c.Iterations == Forever
}

// Encode serializes the config for transport to a worker process
func (c *Config) Encode() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", errors.NewInternalError("failed to encode workload configuration", err)
	}
	return string(data), nil
}

// DecodeConfig parses the output of Encode and validates it
func DecodeConfig(encoded string) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal([]byte(encoded), &config); err != nil {
		return nil, errors.NewValidationError("failed to decode workload configuration", err)
	}
	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
