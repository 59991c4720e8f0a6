package core

import (
	"io"
	"os"

	"github.com/named-data/lfq/std/log"
)

var logFileObj *os.File

// OpenLogger replaces the default logger according to the configuration.
func OpenLogger(c *Config) error {
	var w io.Writer = os.Stderr
	if c.Core.LogFile != "" {
		f, err := os.Create(c.ResolveRelPath(c.Core.LogFile))
		if err != nil {
			return err
		}
		logFileObj = f
		w = f
	}

	logger := log.NewText(w)
	if c.Core.LogFormat == "json" {
		logger = log.NewJson(w)
	}

	level, err := log.ParseLevel(c.Core.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	log.SetDefault(logger)
	return nil
}

// CloseLogger closes the log file, if any.
func CloseLogger() {
	if logFileObj != nil {
		logFileObj.Close()
		logFileObj = nil
	}
}
