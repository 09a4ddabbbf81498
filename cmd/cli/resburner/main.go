package main

import (
	"fmt"
	"os"

	sprintfLogging "github.com/core-tools/hsu-core/pkg/logging/sprintf"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/logging"
	"github.com/core-tools/resburner/pkg/orchestrator"
	"github.com/core-tools/resburner/pkg/process"
	"github.com/core-tools/resburner/pkg/resourceusage"
	"github.com/core-tools/resburner/pkg/worker"
	"github.com/core-tools/resburner/pkg/workload"

	flags "github.com/jessevdk/go-flags"
)

type flagOptions struct {
	ConfigFile string `long:"config" description:"YAML file with workload and logging sections"`

	Iterations           int               `long:"iterations" description:"number of iterations, -1 runs forever (default: 1)"`
	Processes            int               `long:"processes" description:"worker processes per iteration (default: host CPU count)"`
	Loops                int               `long:"loops" description:"loops per worker (default: 100000)"`
	CPULoad              int               `long:"cpu-load" description:"busy-loop increments per loop (default: 1000)"`
	MemoryLoad           workload.ByteSize `long:"memory-load" description:"bytes retained per loop, e.g. 10000 or 10K (default: 10000)"`
	DiskWriteLoad        workload.ByteSize `long:"disk-write-load" description:"bytes written per loop, 0 disables (default: 0)"`
	DiskReadLoad         workload.ByteSize `long:"disk-read-load" description:"bytes read per loop, 0 disables (default: 0)"`
	DiskWriteDestination string            `long:"disk-write-destination" description:"write path template with {i} and {p} placeholders"`
	DiskReadSource       string            `long:"disk-read-source" description:"read path template with {i} and {p} placeholders"`
	DiskBuffer           int               `long:"disk-buffer" description:"disk buffer size in bytes, -1 platform default, 0 unbuffered (default: -1)"`

	LogFile string `long:"log-file" description:"rotating debug log file, empty disables it"`
	Verbose bool   `short:"v" long:"verbose" description:"log info messages to the console"`
	Debug   bool   `short:"d" long:"debug" description:"log debug messages to the console"`
}

func main() {
	// Worker processes are re-executions of this binary
	request, isWorker, err := process.LookupWorkerRequest()
	if isWorker {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid worker request: %v\n", err)
			os.Exit(worker.ExitCodeConfiguration)
		}
		os.Exit(worker.Main(request))
	}

	var opts flagOptions
	var argv []string = os.Args[1:]
	var parser = flags.NewParser(&opts, flags.HelpFlag)
	_, err = parser.ParseArgs(argv)
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			os.Exit(0)
		}
		fmt.Printf("Command line flags parsing failed: %v\n", err)
		os.Exit(worker.ExitCodeConfiguration)
	}

	logger := sprintfLogging.NewStdSprintfLogger()

	host := resourceusage.HostInfo()

	fileConfig, err := loadFileConfig(opts.ConfigFile, host.LogicalCPUs)
	if err != nil {
		logger.Errorf("Failed to load configuration: %v", err)
		os.Exit(exitCode(err))
	}

	applyFlags(parser, &opts, fileConfig)

	summary, err := orchestrator.Run(orchestrator.RunOptions{
		Workload: &fileConfig.Workload,
		Logging:  fileConfig.Logging,
		Host:     host,
	}, logging.NewLogger("module: resburner , ", logging.FuncsOf(logger)))
	if err != nil {
		logger.Errorf("Failed to run: %v", err)
		os.Exit(exitCode(err))
	}

	if summary.Failed > 0 {
		logger.Warnf("%d of %d workers failed", summary.Failed, summary.Succeeded+summary.Failed)
	}
}

func loadFileConfig(configFile string, hostCPUs int) (*workload.FileConfig, error) {
	if configFile == "" {
		config := workload.DefaultFileConfig(hostCPUs)
		return &config, nil
	}
	return workload.LoadConfigFromFile(configFile, hostCPUs)
}

// applyFlags overrides file values with the flags given on the command line
func applyFlags(parser *flags.Parser, opts *flagOptions, config *workload.FileConfig) {
	isSet := func(name string) bool {
		option := parser.FindOptionByLongName(name)
		return option != nil && option.IsSet()
	}

	w := &config.Workload
	if isSet("iterations") {
		w.Iterations = opts.Iterations
	}
	if isSet("processes") {
		w.Processes = opts.Processes
	}
	if isSet("loops") {
		w.Loops = opts.Loops
	}
	if isSet("cpu-load") {
		w.CPULoad = opts.CPULoad
	}
	if isSet("memory-load") {
		w.MemoryLoad = opts.MemoryLoad
	}
	if isSet("disk-write-load") {
		w.DiskWriteLoad = opts.DiskWriteLoad
	}
	if isSet("disk-read-load") {
		w.DiskReadLoad = opts.DiskReadLoad
	}
	if isSet("disk-write-destination") {
		w.DiskWriteDestination = opts.DiskWriteDestination
	}
	if isSet("disk-read-source") {
		w.DiskReadSource = opts.DiskReadSource
	}
	if isSet("disk-buffer") {
		w.DiskBuffer = opts.DiskBuffer
	}

	if isSet("log-file") {
		config.Logging.File.Path = opts.LogFile
	}
	if opts.Verbose || opts.Debug {
		config.Logging.ConsoleLevel = logging.ConsoleLevelFor(opts.Verbose, opts.Debug)
	}
}

func exitCode(err error) int {
	if errors.IsValidationError(err) {
		return worker.ExitCodeConfiguration
	}
	return worker.ExitCodeFailure
}
