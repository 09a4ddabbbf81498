package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const DefaultLogFile = "/tmp/resources-burner.log"

// Config describes the orchestrator's log sinks
type Config struct {
	ConsoleLevel  string     `yaml:"console_level,omitempty"`
	ConsoleFormat string     `yaml:"console_format,omitempty"` // "console" or "json"
	File          FileConfig `yaml:"file,omitempty"`
}

// FileConfig describes the rotating debug log file. An empty path disables it.
type FileConfig struct {
	Path       string `yaml:"path,omitempty"`
	Level      string `yaml:"level,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		ConsoleLevel:  "warn",
		ConsoleFormat: "console",
		File: FileConfig{
			Path:       DefaultLogFile,
			Level:      "debug",
			MaxSizeMB:  1,
			MaxBackups: 2,
		},
	}
}

// ConsoleLevelFor maps the -v/-d switches to a console level
func ConsoleLevelFor(verbose, debug bool) string {
	switch {
	case debug:
		return "debug"
	case verbose:
		return "info"
	default:
		return "warn"
	}
}

// NewOrchestratorZapLogger tees a console core on stderr with an optional
// rotating JSON file core.
func NewOrchestratorZapLogger(config Config) (*zap.Logger, error) {
	consoleLevel, err := parseLevel(config.ConsoleLevel)
	if err != nil {
		return nil, err
	}

	var consoleEncoder zapcore.Encoder
	switch config.ConsoleFormat {
	case "json":
		consoleEncoder = zapcore.NewJSONEncoder(encoderConfig())
	default:
		consoleEncoder = zapcore.NewConsoleEncoder(encoderConfig())
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), consoleLevel),
	}

	if config.File.Path != "" {
		fileLevel, err := parseLevel(config.File.Level)
		if err != nil {
			return nil, err
		}
		rotator := &lumberjack.Logger{
			Filename:   config.File.Path,
			MaxSize:    config.File.MaxSizeMB,
			MaxBackups: config.File.MaxBackups,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), fileLevel))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// NewWorkerZapLogger writes every entry as a JSON line to out. The
// orchestrator relays those lines, so workers never touch the log file.
func NewWorkerZapLogger(out zapcore.WriteSyncer) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.Lock(out), zapcore.DebugLevel)
	return zap.New(core)
}

func encoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = utcTimeEncoder
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	return encoderConfig
}

func utcTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(time.RFC3339Nano))
}

func parseLevel(levelStr string) (zapcore.Level, error) {
	if levelStr == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", levelStr)
	}
	return level, nil
}
