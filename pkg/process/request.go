package process

import (
	"os"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/workload"
)

// Environment variables that turn a resburner executable into a worker
const (
	EnvWorkerContext = "RESBURNER_WORKER"   // "<iteration>:<worker>"
	EnvWorkload      = "RESBURNER_WORKLOAD" // YAML encoded workload.Config
)

// WorkerRequest is what a worker process receives from the orchestrator
type WorkerRequest struct {
	Context workload.WorkerContext
	Config  *workload.Config
}

// LookupWorkerRequest reports whether this process was launched as a
// worker, and decodes its request if so.
func LookupWorkerRequest() (*WorkerRequest, bool, error) {
	rawContext, ok := os.LookupEnv(EnvWorkerContext)
	if !ok {
		return nil, false, nil
	}

	wctx, err := workload.ParseWorkerContext(rawContext)
	if err != nil {
		return nil, true, errors.NewValidationError("invalid "+EnvWorkerContext, err)
	}

	rawConfig, ok := os.LookupEnv(EnvWorkload)
	if !ok {
		return nil, true, errors.NewValidationError(EnvWorkload+" is not set", nil)
	}
	config, err := workload.DecodeConfig(rawConfig)
	if err != nil {
		return nil, true, errors.NewValidationError("invalid "+EnvWorkload, err)
	}

	return &WorkerRequest{
		Context: wctx,
		Config:  config,
	}, true, nil
}

func requestEnvironment(wctx workload.WorkerContext, encodedConfig string) []string {
	return []string{
		EnvWorkerContext + "=" + wctx.String(),
		EnvWorkload + "=" + encodedConfig,
	}
}
