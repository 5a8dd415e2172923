// Package logger, global zerolog logger'ını yapılandırır.
//
// Her bileşen kendi "component" alanıyla log atar:
//
//	log.Info().Str("component", "ws").Msg("client connected")
//
// Böylece log satırları eski "[ws] ..." prefix'leri gibi filtrelenebilir.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init, global log seviyesini ve çıktı formatını ayarlar.
// level: "debug", "info", "warn", "error", boş veya bilinmeyen değer info'ya düşer.
// pretty: true ise insan-okunur console formatı (development), false ise JSON.
func Init(level string, pretty bool) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return log.Logger
}

// Component, belirli bir bileşen için alt logger döner.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
