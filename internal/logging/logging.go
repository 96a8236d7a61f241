// Package logging is a thin leveled gate over the standard log package.
// Verbosity follows the CLI convention: 0 = warn, 1 = info, 2+ = debug.
package logging

import "log"

type Level int

const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

var level = LevelWarn

// SetVerbosity maps a -verbose count to a log level. Called once at
// startup before any goroutines are running.
func SetVerbosity(v int) {
	switch {
	case v >= 2:
		level = LevelDebug
	case v == 1:
		level = LevelInfo
	default:
		level = LevelWarn
	}
}

func Debugf(format string, args ...any) {
	if level >= LevelDebug {
		log.Printf("DEBUG: "+format, args...)
	}
}

func Infof(format string, args ...any) {
	if level >= LevelInfo {
		log.Printf("INFO: "+format, args...)
	}
}

func Warnf(format string, args ...any) {
	log.Printf("WARN: "+format, args...)
}

func Errorf(format string, args ...any) {
	log.Printf("ERROR: "+format, args...)
}
