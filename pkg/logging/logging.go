package logging

// Logger is the printf-style logger used by infrastructure code
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type LogFunc func(format string, args ...interface{})

type LogFuncs struct {
	Debugf LogFunc
	Infof  LogFunc
	Warnf  LogFunc
	Errorf LogFunc
}

// FuncsOf returns the LogFuncs of any Logger, for re-prefixing
func FuncsOf(l Logger) LogFuncs {
	return LogFuncs{
		Debugf: l.Debugf,
		Infof:  l.Infof,
		Warnf:  l.Warnf,
		Errorf: l.Errorf,
	}
}

type logger struct {
	prefix string
	funcs  LogFuncs
}

// NewLogger returns a Logger that prepends prefix to every message.
// Nil funcs drop messages at that level.
func NewLogger(prefix string, funcs LogFuncs) Logger {
	return &logger{
		prefix: prefix,
		funcs:  funcs,
	}
}

func (l *logger) emit(f LogFunc, format string, args []interface{}) {
	if f == nil {
		return
	}
	f(l.prefix+format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.emit(l.funcs.Debugf, format, args)
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.emit(l.funcs.Infof, format, args)
}

func (l *logger) Warnf(format string, args ...interface{}) {
	l.emit(l.funcs.Warnf, format, args)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.emit(l.funcs.Errorf, format, args)
}
