package testlog

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/halewell/halewell/internal/observability"
)

func Start(t *testing.T) {
	t.Helper()
	observability.InitTestLogger("halewell-test")
	log.Debug().Str("test", t.Name()).Msg("start")
}
