package main

import (
	"fmt"
	"os"

	"wipecert/internal/config"

	"github.com/rs/zerolog"
)

func writeOutput(path string, payload []byte) error {
	if path == "" {
		if _, err := os.Stdout.Write(payload); err != nil {
			return err
		}
		_, err := fmt.Fprintln(os.Stdout)
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

// cliLogger keeps subcommand output clean: structured logs go to stderr and
// only warnings and above are shown unless LOG_LEVEL is set explicitly.
func cliLogger(cfg config.Config) zerolog.Logger {
	level := zerolog.WarnLevel
	if os.Getenv("LOG_LEVEL") != "" {
		if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		}
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)
}
