package workload

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/core-tools/resburner/pkg/errors"
)

const (
	IterationPlaceholder = "{i}"
	WorkerPlaceholder    = "{p}"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

// WorkerContext identifies one worker run: the iteration it belongs to and
// its index among the iteration's siblings.
type WorkerContext struct {
	Iteration int
	Worker    int
}

func (w WorkerContext) String() string {
	return strconv.Itoa(w.Iteration) + ":" + strconv.Itoa(w.Worker)
}

// ParseWorkerContext parses the "<iteration>:<worker>" form of String
func ParseWorkerContext(value string) (WorkerContext, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return WorkerContext{}, errors.NewValidationError("invalid worker context: "+value, nil)
	}
	iteration, err := strconv.Atoi(parts[0])
	if err != nil || iteration < 0 {
		return WorkerContext{}, errors.NewValidationError("invalid iteration index: "+parts[0], err)
	}
	worker, err := strconv.Atoi(parts[1])
	if err != nil || worker < 0 {
		return WorkerContext{}, errors.NewValidationError("invalid worker index: "+parts[1], err)
	}
	return WorkerContext{Iteration: iteration, Worker: worker}, nil
}

// ResolvePath substitutes {i} and {p} in template
func (w WorkerContext) ResolvePath(template string) string {
	return strings.NewReplacer(
		IterationPlaceholder, strconv.Itoa(w.Iteration),
		WorkerPlaceholder, strconv.Itoa(w.Worker),
	).Replace(template)
}

// ValidatePathTemplate rejects placeholders other than {i} and {p}
func ValidatePathTemplate(template string) error {
	if template == "" {
		return errors.NewValidationError("path template cannot be empty", nil)
	}
	for _, placeholder := range placeholderPattern.FindAllString(template, -1) {
		if placeholder != IterationPlaceholder && placeholder != WorkerPlaceholder {
			return errors.NewValidationError("unknown placeholder "+placeholder+" in path template", nil).
				WithContext("template", template)
		}
	}
	return nil
}

// IsWorkerUnique reports whether template yields distinct paths for
// sibling workers of one iteration.
func IsWorkerUnique(template string) bool {
	return strings.Contains(template, WorkerPlaceholder)
}
