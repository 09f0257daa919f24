package testlog

import (
	"testing"

	"github.com/danmuck/beacon/internal/logging"
	"github.com/rs/zerolog/log"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Str("test", t.Name()).Msg("start")
}

// Logf writes a debug line through the shared test logger.
func Logf(format string, args ...any) {
	logging.ConfigureTests()
	log.Debug().Msgf(format, args...)
}
