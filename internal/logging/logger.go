package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New は環境に応じた zerolog.Logger を作成します。
// development ではデバッグレベルのコンソール出力、それ以外は JSON です。
func New(env string) zerolog.Logger {
	return newWithWriter(env, os.Stdout)
}

func newWithWriter(env string, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if env == "development" {
		level = zerolog.DebugLevel
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", "gemini-image-studio").
		Logger()
}
