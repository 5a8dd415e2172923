// Package i18n, kullanıcıya dönen metinleri kullanıcının diline çevirir.
//
// Dil önceliği: kullanıcının kayıtlı Language tercihi, sonra
// Accept-Language header'ı, en son DefaultLanguage.
//
//	loc := i18n.NewLocalizer(user.Language)
//	msg := loc.T("reaction.muted")
package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// SupportedLanguages, locales/ altında dosyası bulunan diller.
var SupportedLanguages = []string{"en", "tr"}

// DefaultLanguage, fallback dili.
const DefaultLanguage = "en"

// translations: map[lang]map[flatKey]text. Load sonrası sadece okunur.
var (
	translations map[string]map[string]string
	loadOnce     sync.Once
	loadErr      error
)

// Load, her desteklenen dil için <lang>.json dosyasını okur.
// Sadece ilk çağrı çalışır; sonraki çağrılar ilk sonucun error'ını döner.
//
// sync.Once nedir?
// Bir fonksiyonun programın ömrü boyunca sadece BİR KERE çalışmasını garanti
// eder. Birden fazla goroutine Do'yu aynı anda çağırsa bile fonksiyonu biri
// çalıştırır, diğerleri o bitene kadar bekler. Do döndükten sonra yazılan
// değerler (translations, loadErr) tüm goroutine'lerden görünür; bu yüzden
// okuma tarafında ayrıca mutex gerekmez.
//
// Dosyalar önce yerel bir map'e yüklenir; translations'a sadece tüm diller
// başarıyla okunduysa atanır.
func Load(localesFS fs.FS) error {
	loadOnce.Do(func() {
		loaded := make(map[string]map[string]string, len(SupportedLanguages))

		for _, lang := range SupportedLanguages {
			fileName := lang + ".json"

			data, err := fs.ReadFile(localesFS, fileName)
			if err != nil {
				loadErr = fmt.Errorf("failed to read translation file %s: %w", fileName, err)
				return
			}

			var nested map[string]any
			if err := json.Unmarshal(data, &nested); err != nil {
				loadErr = fmt.Errorf("failed to parse translation file %s: %w", fileName, err)
				return
			}

			flat := make(map[string]string)
			flattenMap("", nested, flat)
			loaded[lang] = flat

			log.Debug().Str("component", "i18n").Str("lang", lang).Int("keys", len(flat)).Msg("translations loaded")
		}

		translations = loaded
	})

	return loadErr
}

// Localizer, tek bir dile bağlı çevirici.
type Localizer struct {
	lang string
}

// NewLocalizer, desteklenmeyen veya boş dil DefaultLanguage'a düşer.
func NewLocalizer(lang string) *Localizer {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !isSupported(lang) {
		lang = DefaultLanguage
	}
	return &Localizer{lang: lang}
}

// Lang, localizer'ın çözümlenmiş dil kodunu döner.
func (l *Localizer) Lang() string { return l.lang }

// T, anahtarın çevirisini döner: önce kendi dili, sonra İngilizce,
// ikisinde de yoksa anahtarın kendisi.
func (l *Localizer) T(key string) string {
	if msg, ok := translations[l.lang][key]; ok {
		return msg
	}
	if msg, ok := translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// TWithParams, çeviri metnindeki {{param}} yer tutucularını doldurur.
func (l *Localizer) TWithParams(key string, params map[string]string) string {
	msg := l.T(key)
	for k, v := range params {
		msg = strings.ReplaceAll(msg, "{{"+k+"}}", v)
	}
	return msg
}

// DetectLanguage, "tr-TR,tr;q=0.9,en;q=0.8" gibi bir header'dan ilk
// desteklenen dili seçer.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		lang := strings.TrimSpace(strings.Split(part, ";")[0])
		lang = strings.ToLower(strings.Split(lang, "-")[0])
		if isSupported(lang) {
			return lang
		}
	}
	return DefaultLanguage
}

func isSupported(lang string) bool {
	return slices.Contains(SupportedLanguages, lang)
}

// flattenMap: {"reaction": {"muted": "..."}} → {"reaction.muted": "..."}
//
// json.Unmarshal, map[string]any hedefinde iç içe objeleri yine map[string]any,
// metinleri string olarak verir. "switch val := v.(type)" bir type switch'tir:
// her case'te val o case'in tipindedir, ayrıca type assertion gerekmez.
// Sayı veya dizi gibi beklenmeyen değerler sessizce atlanır.
func flattenMap(prefix string, src map[string]any, dst map[string]string) {
	for k, v := range src {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			dst[key] = val
		case map[string]any:
			flattenMap(key, val, dst)
		}
	}
}
