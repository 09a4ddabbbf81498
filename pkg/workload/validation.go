package workload

import (
	"fmt"

	"github.com/core-tools/resburner/pkg/errors"
)

// ValidateConfig checks every field and reports all problems at once
func ValidateConfig(config *Config) error {
	if config == nil {
		return errors.NewValidationError("configuration cannot be nil", nil)
	}

	collection := errors.NewErrorCollection()

	if config.Iterations < Forever {
		collection.Add(errors.NewValidationError(
			fmt.Sprintf("iterations must be >= 0 or %d for forever, got %d", Forever, config.Iterations), nil))
	}
	if config.Processes < 1 {
		collection.Add(errors.NewValidationError(
			fmt.Sprintf("processes must be at least 1, got %d", config.Processes), nil))
	}
	if config.Loops < 0 {
		collection.Add(errors.NewValidationError("loops cannot be negative", nil))
	}
	if config.CPULoad < 0 {
		collection.Add(errors.NewValidationError("CPU load cannot be negative", nil))
	}
	if config.MemoryLoad < 0 {
		collection.Add(errors.NewValidationError("memory load cannot be negative", nil))
	}
	if config.DiskWriteLoad < 0 {
		collection.Add(errors.NewValidationError("disk write load cannot be negative", nil))
	}
	if config.DiskReadLoad < 0 {
		collection.Add(errors.NewValidationError("disk read load cannot be negative", nil))
	}
	if config.DiskBuffer < DiskBufferDefault {
		collection.Add(errors.NewValidationError(
			fmt.Sprintf("disk buffer must be >= %d, got %d", DiskBufferDefault, config.DiskBuffer), nil))
	}

	if config.DiskWriteLoad > 0 {
		if err := ValidatePathTemplate(config.DiskWriteDestination); err != nil {
			collection.Add(errors.NewValidationError("invalid disk write destination", err))
		}
	}
	if config.DiskReadLoad > 0 {
		if err := ValidatePathTemplate(config.DiskReadSource); err != nil {
			collection.Add(errors.NewValidationError("invalid disk read source", err))
		}
	}

	if collection.HasErrors() {
		return errors.NewValidationError("invalid workload configuration", collection.ToError())
	}
	return nil
}
