package logcollection

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"sort"
)

const maxLineSize = 1024 * 1024

// Keys written by the worker's JSON encoder that the relay re-derives
// instead of copying as fields.
var envelopeKeys = map[string]struct{}{
	"level":     {},
	"timestamp": {},
	"msg":       {},
	"caller":    {},
}

// StreamRelay forwards worker output lines into a StructuredLogger.
// JSON lines keep their level, message and fields; anything else is
// forwarded verbatim at info level.
type StreamRelay struct {
	logger StructuredLogger
}

func NewStreamRelay(logger StructuredLogger) *StreamRelay {
	return &StreamRelay{logger: logger}
}

func (r *StreamRelay) CollectFromStream(stream io.Reader, fields ...LogField) error {
	logger := r.logger.WithFields(fields...)

	owned := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		owned[field.Key] = struct{}{}
	}

	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		r.forwardLine(logger, line, owned)
	}
	return scanner.Err()
}

func (r *StreamRelay) forwardLine(logger StructuredLogger, line []byte, owned map[string]struct{}) {
	if line[0] != '{' {
		logger.LogWithFields(InfoLevel, string(line))
		return
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(line, &entry); err != nil {
		logger.LogWithFields(InfoLevel, string(line))
		return
	}

	levelName, _ := entry["level"].(string)
	level, err := ParseLevel(levelName)
	if err != nil {
		level = InfoLevel
	}
	msg, _ := entry["msg"].(string)

	keys := make([]string, 0, len(entry))
	for key := range entry {
		if _, skip := envelopeKeys[key]; skip {
			continue
		}
		if _, skip := owned[key]; skip {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	logger.LogWithFields(level, msg, FromMap(keys, entry)...)
}
