package logcollection

import (
	"time"

	"go.uber.org/zap"
)

// ===== ZAP BACKEND ADAPTER =====

// ZapAdapter implements StructuredLogger on top of a zap logger
type ZapAdapter struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{
		logger: logger,
		sugar:  logger.Sugar(),
	}
}

// NewNopLogger returns a StructuredLogger that discards everything
func NewNopLogger() StructuredLogger {
	return NewZapAdapter(zap.NewNop())
}

func (z *ZapAdapter) Debugf(format string, args ...interface{}) {
	z.sugar.Debugf(format, args...)
}

func (z *ZapAdapter) Infof(format string, args ...interface{}) {
	z.sugar.Infof(format, args...)
}

func (z *ZapAdapter) Warnf(format string, args ...interface{}) {
	z.sugar.Warnf(format, args...)
}

func (z *ZapAdapter) Errorf(format string, args ...interface{}) {
	z.sugar.Errorf(format, args...)
}

func (z *ZapAdapter) LogWithFields(level LogLevel, msg string, fields ...LogField) {
	z.logAtLevel(level, msg, z.convertFields(fields)...)
}

func (z *ZapAdapter) WithFields(fields ...LogField) StructuredLogger {
	return NewZapAdapter(z.logger.With(z.convertFields(fields)...))
}

func (z *ZapAdapter) WithError(err error) StructuredLogger {
	return z.WithFields(Error(err))
}

func (z *ZapAdapter) Sync() error {
	return z.logger.Sync()
}

// Zap exposes the underlying logger for wiring into other zap consumers
func (z *ZapAdapter) Zap() *zap.Logger {
	return z.logger
}

// ===== INTERNAL CONVERSION METHODS =====

func (z *ZapAdapter) convertFields(fields []LogField) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, field := range fields {
		zapFields[i] = convertSingleField(field)
	}
	return zapFields
}

func convertSingleField(field LogField) zap.Field {
	switch field.Type {
	case StringField:
		return zap.String(field.Key, field.Value.(string))
	case IntField:
		return zap.Int(field.Key, field.Value.(int))
	case Int64Field:
		return zap.Int64(field.Key, field.Value.(int64))
	case Uint64Field:
		return zap.Uint64(field.Key, field.Value.(uint64))
	case Float64Field:
		return zap.Float64(field.Key, field.Value.(float64))
	case BoolField:
		return zap.Bool(field.Key, field.Value.(bool))
	case DurationField:
		return zap.Duration(field.Key, field.Value.(time.Duration))
	case TimeField:
		return zap.Time(field.Key, field.Value.(time.Time))
	case ErrorField:
		if err, ok := field.Value.(error); ok {
			return zap.NamedError(field.Key, err)
		}
		return zap.String(field.Key, "invalid error field")
	default:
		return zap.Any(field.Key, field.Value)
	}
}

func (z *ZapAdapter) logAtLevel(level LogLevel, msg string, fields ...zap.Field) {
	switch level {
	case DebugLevel:
		z.logger.Debug(msg, fields...)
	case InfoLevel:
		z.logger.Info(msg, fields...)
	case WarnLevel:
		z.logger.Warn(msg, fields...)
	case ErrorLevel:
		z.logger.Error(msg, fields...)
	default:
		z.logger.Info(msg, fields...)
	}
}
