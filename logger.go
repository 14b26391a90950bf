package httpclient

import (
	"log"
	"os"
)

// Logger is used by ClientImpl and ConnectorImpl for logging formatted
// messages. A nil Logger field on ClientImpl/ConnectorImpl uses
// defaultLogger.
type Logger interface {
	Printf(format string, args ...interface{})
}

var defaultLogger = Logger(log.New(os.Stderr, "", log.LstdFlags))

func loggerOrDefault(l Logger) Logger {
	if l != nil {
		return l
	}
	return defaultLogger
}
