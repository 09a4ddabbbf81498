package workload

import (
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"gopkg.in/yaml.v3"

	"github.com/core-tools/resburner/pkg/errors"
)

// ByteSize is a byte count that parses either a plain integer ("10000")
// or a unit-suffixed quantity ("10K", "4MiB").
type ByteSize int64

func ParseByteSize(value string) (ByteSize, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, errors.NewValidationError("byte size cannot be empty", nil)
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		if n < 0 {
			return 0, errors.NewValidationError("byte size cannot be negative: "+value, nil)
		}
		return ByteSize(n), nil
	}
	n, err := bytefmt.ToBytes(value)
	if err != nil {
		return 0, errors.NewValidationError("invalid byte size: "+value, err)
	}
	return ByteSize(n), nil
}

func (b ByteSize) Int() int {
	return int(b)
}

func (b ByteSize) String() string {
	if b < 0 {
		return strconv.FormatInt(int64(b), 10)
	}
	return bytefmt.ByteSize(uint64(b))
}

// UnmarshalFlag implements flags.Unmarshaler
func (b *ByteSize) UnmarshalFlag(value string) error {
	parsed, err := ParseByteSize(value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalFlag implements flags.Marshaler
func (b ByteSize) MarshalFlag() (string, error) {
	return strconv.FormatInt(int64(b), 10), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseByteSize(node.Value)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalYAML keeps the exact byte count so workers decode the same value
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return int64(b), nil
}
