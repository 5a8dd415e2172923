package i18n

import "embed"

// EmbeddedLocales, locales/*.json çeviri dosyalarını binary'ye gömer.
//
//go:embed locales/*.json
var EmbeddedLocales embed.FS
