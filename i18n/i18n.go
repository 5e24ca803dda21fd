// Package i18n localizes xclockit's own CLI output. Translation catalogs
// are .po files embedded in the binary and served through gotext; a missing
// translation falls back to the msgid.
package i18n

import (
	"embed"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "xclockit"

var po *gotext.Locale

// Init loads the catalog for lang, or for the language detected from the
// environment when lang is empty. Call once before T or N.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	po = gotext.NewLocaleFSWithPath(lang, locales, "locales")
	po.AddDomain(domain)
	po.SetDomain(domain)
}

// T returns the translation of msgid, or msgid itself when none exists.
func T(msgid string) string {
	if po == nil {
		return msgid
	}
	return po.Get(msgid)
}

// N returns the plural form of a message for n, per the catalog's plural
// formula.
func N(singular, plural string, n int) string {
	if po == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return po.GetN(singular, plural, n)
}

// detectLanguage follows gettext precedence: LANGUAGE, LC_ALL, LC_MESSAGES,
// LANG. LANGUAGE may hold a colon-separated list; encoding suffixes are
// stripped; "C" and "POSIX" mean untranslated output.
func detectLanguage() string {
	for _, key := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(key)
		if key == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if i := strings.IndexByte(val, '.'); i >= 0 {
			val = val[:i]
		}
		switch val {
		case "", "C", "POSIX":
			continue
		}
		return val
	}
	return "en"
}
