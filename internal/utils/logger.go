package utils

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates the process-level structured logger
func NewLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
