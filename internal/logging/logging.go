// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type SetupParams struct {
	Level    string
	File     string
	ToStdout bool
	JSON     bool
}

// Setup points the standard logger at stdout or a rotated log file. The
// returned closer flushes the file; it is a no-op for stdout.
func Setup(params SetupParams) io.Closer {
	return setup(log.StandardLogger(), params, os.Stdout)
}

func setup(logger *log.Logger, params SetupParams, stdout io.Writer) io.Closer {
	if params.JSON {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	logger.SetLevel(GetLevel(params.Level))

	if params.File == "" {
		logger.SetOutput(stdout)
		logger.Debug("writing logs only to stdout")
		return nopCloser{}
	}

	if !strings.HasSuffix(params.File, ".log") {
		params.File += ".log"
	}
	rotating := &lumberjack.Logger{
		Filename:   params.File,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		Compress:   true,
	}

	if params.ToStdout {
		logger.SetOutput(io.MultiWriter(stdout, rotating))
		logger.Debugf("writing logs to %s and stdout", params.File)
	} else {
		logger.SetOutput(rotating)
	}
	return rotating
}

// GetLevel maps a level name to a logrus level. Unknown names mean info.
func GetLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
