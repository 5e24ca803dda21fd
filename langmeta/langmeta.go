// Package langmeta provides a shared locale metadata registry (native names
// and emoji flags) used by the CLI UI. Identifiers follow the Apple
// convention of BCP-47 tags with script subtags (zh-Hans, zh-Hant, pt-BR).
package langmeta

import "strings"

// Meta describes locale display metadata.
type Meta struct {
	Name string
	Flag string
}

// Registry contains canonical locale metadata. Variants are resolved in
// Resolve() via normalization, region and script fallbacks.
var Registry = map[string]Meta{
	"ar":      {Name: "العربية", Flag: "🇸🇦"},
	"ca":      {Name: "Català", Flag: "🇪🇸"},
	"cs":      {Name: "Čeština", Flag: "🇨🇿"},
	"da":      {Name: "Dansk", Flag: "🇩🇰"},
	"de":      {Name: "Deutsch", Flag: "🇩🇪"},
	"el":      {Name: "Ελληνικά", Flag: "🇬🇷"},
	"en":      {Name: "English", Flag: "🇺🇸"},
	"en-AU":   {Name: "English (Australia)", Flag: "🇦🇺"},
	"en-GB":   {Name: "English (UK)", Flag: "🇬🇧"},
	"en-IN":   {Name: "English (India)", Flag: "🇮🇳"},
	"es":      {Name: "Español", Flag: "🇪🇸"},
	"es-419":  {Name: "Español (Latinoamérica)", Flag: "🇲🇽"},
	"fi":      {Name: "Suomi", Flag: "🇫🇮"},
	"fr":      {Name: "Français", Flag: "🇫🇷"},
	"fr-CA":   {Name: "Français (Canada)", Flag: "🇨🇦"},
	"he":      {Name: "עברית", Flag: "🇮🇱"},
	"hi":      {Name: "हिन्दी", Flag: "🇮🇳"},
	"hr":      {Name: "Hrvatski", Flag: "🇭🇷"},
	"hu":      {Name: "Magyar", Flag: "🇭🇺"},
	"id":      {Name: "Bahasa Indonesia", Flag: "🇮🇩"},
	"it":      {Name: "Italiano", Flag: "🇮🇹"},
	"ja":      {Name: "日本語", Flag: "🇯🇵"},
	"ko":      {Name: "한국어", Flag: "🇰🇷"},
	"ms":      {Name: "Bahasa Melayu", Flag: "🇲🇾"},
	"nb":      {Name: "Norsk bokmål", Flag: "🇳🇴"},
	"nl":      {Name: "Nederlands", Flag: "🇳🇱"},
	"pl":      {Name: "Polski", Flag: "🇵🇱"},
	"pt-BR":   {Name: "Português (Brasil)", Flag: "🇧🇷"},
	"pt-PT":   {Name: "Português (Portugal)", Flag: "🇵🇹"},
	"ro":      {Name: "Română", Flag: "🇷🇴"},
	"ru":      {Name: "Русский", Flag: "🇷🇺"},
	"sk":      {Name: "Slovenčina", Flag: "🇸🇰"},
	"sv":      {Name: "Svenska", Flag: "🇸🇪"},
	"th":      {Name: "ไทย", Flag: "🇹🇭"},
	"tr":      {Name: "Türkçe", Flag: "🇹🇷"},
	"uk":      {Name: "Українська", Flag: "🇺🇦"},
	"vi":      {Name: "Tiếng Việt", Flag: "🇻🇳"},
	"zh-Hans": {Name: "简体中文", Flag: "🇨🇳"},
	"zh-Hant": {Name: "繁體中文", Flag: "🇹🇼"},
	"zh-HK":   {Name: "繁體中文 (香港)", Flag: "🇭🇰"},
}

// canonicalize normalizes a locale identifier: separators to hyphens,
// language lowercased, 4-letter script subtags title-cased, 2-letter and
// 3-digit region subtags uppercased.
func canonicalize(locale string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		p := parts[i]
		switch len(p) {
		case 4:
			parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
		case 2, 3:
			parts[i] = strings.ToUpper(p)
		}
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort locale metadata, supporting variants like
// zh_hans, pt_BR, and falling back from region to script to base language
// (zh-Hans-CN → zh-Hans → zh).
func Resolve(locale string) Meta {
	if m, ok := Registry[locale]; ok {
		return m
	}
	normalized := canonicalize(locale)
	if m, ok := Registry[normalized]; ok {
		return m
	}
	parts := strings.Split(normalized, "-")
	for len(parts) > 1 {
		parts = parts[:len(parts)-1]
		if m, ok := Registry[strings.Join(parts, "-")]; ok {
			return m
		}
	}
	return Meta{Name: locale, Flag: ""}
}
