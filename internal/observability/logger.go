package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/taoctl/internal/logging"
)

// InitLogger builds the root logger and installs it as the global one.
// Output goes to stderr: stdout carries the engine's raw output stream
// and must stay clean.
func InitLogger(app string) zerolog.Logger {
	cfg := logging.Active()
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    cfg.NoColor,
	}
	ctx := zerolog.New(output).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Str("app", app).Logger()
	log.Logger = logger
	return logger
}
