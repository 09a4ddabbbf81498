package logcollection

import (
	"fmt"
	"time"
)

// LogField is a structured log field that does not expose the backend
type LogField struct {
	Key   string
	Value interface{}
	Type  FieldType
}

// FieldType identifies how the field should be processed
type FieldType int

const (
	StringField FieldType = iota
	IntField
	Int64Field
	Uint64Field
	Float64Field
	BoolField
	DurationField
	TimeField
	ErrorField
	ObjectField
)

func (ft FieldType) String() string {
	switch ft {
	case StringField:
		return "string"
	case IntField:
		return "int"
	case Int64Field:
		return "int64"
	case Uint64Field:
		return "uint64"
	case Float64Field:
		return "float64"
	case BoolField:
		return "bool"
	case DurationField:
		return "duration"
	case TimeField:
		return "time"
	case ErrorField:
		return "error"
	case ObjectField:
		return "object"
	default:
		return "unknown"
	}
}

// ===== FIELD CONSTRUCTORS =====

func String(key, value string) LogField {
	return LogField{Key: key, Value: value, Type: StringField}
}

func Int(key string, value int) LogField {
	return LogField{Key: key, Value: value, Type: IntField}
}

func Int64(key string, value int64) LogField {
	return LogField{Key: key, Value: value, Type: Int64Field}
}

func Uint64(key string, value uint64) LogField {
	return LogField{Key: key, Value: value, Type: Uint64Field}
}

func Float64(key string, value float64) LogField {
	return LogField{Key: key, Value: value, Type: Float64Field}
}

func Bool(key string, value bool) LogField {
	return LogField{Key: key, Value: value, Type: BoolField}
}

func Duration(key string, value time.Duration) LogField {
	return LogField{Key: key, Value: value, Type: DurationField}
}

func Time(key string, value time.Time) LogField {
	return LogField{Key: key, Value: value, Type: TimeField}
}

// Error creates an error field, always keyed "error"
func Error(err error) LogField {
	return LogField{Key: "error", Value: err, Type: ErrorField}
}

func Object(key string, value interface{}) LogField {
	return LogField{Key: key, Value: value, Type: ObjectField}
}

// ===== LOAD GENERATOR CONVENIENCE FIELDS =====

// Iteration creates an iteration index field
func Iteration(iteration int) LogField {
	return Int("iteration", iteration)
}

// Worker creates a worker index field
func Worker(worker int) LogField {
	return Int("worker", worker)
}

// PID creates a process ID field
func PID(pid int) LogField {
	return Int("pid", pid)
}

// Component creates a component field
func Component(component string) LogField {
	return String("component", component)
}

// ===== FIELD UTILITIES =====

// FromMap converts decoded JSON values to fields, keys in the given order
func FromMap(keys []string, m map[string]interface{}) []LogField {
	fields := make([]LogField, 0, len(keys))
	for _, key := range keys {
		value, ok := m[key]
		if !ok {
			continue
		}
		fields = append(fields, inferField(key, value))
	}
	return fields
}

// inferField attempts to infer the field type from the value
func inferField(key string, value interface{}) LogField {
	switch v := value.(type) {
	case string:
		return String(key, v)
	case int:
		return Int(key, v)
	case int64:
		return Int64(key, v)
	case uint64:
		return Uint64(key, v)
	case float64:
		// JSON numbers decode to float64; keep integral values integral
		if v == float64(int64(v)) {
			return Int64(key, int64(v))
		}
		return Float64(key, v)
	case bool:
		return Bool(key, v)
	case time.Duration:
		return Duration(key, v)
	case time.Time:
		return Time(key, v)
	case error:
		return LogField{Key: key, Value: v, Type: ErrorField}
	default:
		return Object(key, v)
	}
}

func (f LogField) String() string {
	return fmt.Sprintf("%s=%v", f.Key, f.Value)
}
