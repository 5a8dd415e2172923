package i18n

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T) {
	t.Helper()
	locales, err := fs.Sub(EmbeddedLocales, "locales")
	require.NoError(t, err)
	require.NoError(t, Load(locales))
}

func TestLocalizerTranslates(t *testing.T) {
	loadEmbedded(t)

	assert.Equal(t, "Bu oda salt okunur, tepkiler kapalı", NewLocalizer("tr").T("reaction.readOnly"))
	assert.Equal(t, "This room is read only, reactions are disabled", NewLocalizer("en").T("reaction.readOnly"))
}

func TestLocalizerFallbacks(t *testing.T) {
	loadEmbedded(t)

	loc := NewLocalizer("de")
	assert.Equal(t, DefaultLanguage, loc.Lang())
	assert.Equal(t, "You have been muted and cannot react in this room", loc.T("reaction.muted"))
	assert.Equal(t, "no.such.key", loc.T("no.such.key"))
}

func TestEveryLanguageHasSameKeys(t *testing.T) {
	loadEmbedded(t)

	for key := range translations[DefaultLanguage] {
		for _, lang := range SupportedLanguages {
			_, ok := translations[lang][key]
			assert.True(t, ok, "%s missing %s", lang, key)
		}
	}
}

func TestTWithParams(t *testing.T) {
	loadEmbedded(t)

	// Bilinmeyen anahtar kendisine düşer, yer tutucular yine doldurulur.
	assert.Equal(t, "hi ali", NewLocalizer("en").TWithParams("hi {{name}}", map[string]string{"name": "ali"}))
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "tr", DetectLanguage("tr-TR,tr;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("de-DE,fr;q=0.5"))
	assert.Equal(t, "en", DetectLanguage(""))
}
