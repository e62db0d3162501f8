package roomcast

// Logger is what the registry, rooms, the archiver and the TCP server log
// through. The engine logs room lifecycle and pruning at debug level, so a
// production logger usually filters Debugf.
//
// roomcast-server adapts a zap.SugaredLogger:
//
//	type ZapLogger struct {
//	    logger *zap.SugaredLogger
//	}
//
//	func (l *ZapLogger) Debugf(format string, args ...interface{}) {
//	    l.logger.Debugf(format, args...)
//	}
//
//	registry, err := roomcast.NewRegistry(roomcast.WithLogger(&ZapLogger{logger: z.Sugar()}))
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// Info logs a fixed message, such as a component starting or stopping.
	Info(message string)
}

// NoopLogger discards everything. It is the default for NewRegistry,
// NewArchiver and the server.
type NoopLogger struct{}

func (l *NoopLogger) Debugf(_ string, _ ...interface{}) {}
func (l *NoopLogger) Infof(_ string, _ ...interface{})  {}
func (l *NoopLogger) Warnf(_ string, _ ...interface{})  {}
func (l *NoopLogger) Errorf(_ string, _ ...interface{}) {}
func (l *NoopLogger) Info(_ string)                     {}
