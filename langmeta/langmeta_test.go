package langmeta

import "testing"

func TestResolveExact(t *testing.T) {
	m := Resolve("zh-Hans")
	if m.Name != "简体中文" || m.Flag != "🇨🇳" {
		t.Errorf("zh-Hans: got %+v", m)
	}
}

func TestResolveVariants(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"ru", "Русский"},
		{"ru_RU", "Русский"},       // underscore + region fallback
		{"zh_hans", "简体中文"},        // script casing normalized
		{"ZH-HANT", "繁體中文"},        // language casing normalized
		{"pt_br", "Português (Brasil)"},
		{"zh-Hans-CN", "简体中文"},     // region stripped, script kept
		{"es-419", "Español (Latinoamérica)"},
		{"en-GB", "English (UK)"},
		{"de-DE", "Deutsch"},
	}
	for _, tc := range tests {
		if got := Resolve(tc.locale).Name; got != tc.want {
			t.Errorf("Resolve(%q).Name: got %q, want %q", tc.locale, got, tc.want)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	m := Resolve("tlh")
	if m.Name != "tlh" {
		t.Errorf("unknown locale name: got %q, want tlh", m.Name)
	}
	if m.Flag != "" {
		t.Errorf("unknown locale flag: got %q, want empty", m.Flag)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"zh_hans", "zh-Hans"},
		{"PT_br", "pt-BR"},
		{"es_419", "es-419"},
		{" en ", "en"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := canonicalize(tc.in); got != tc.want {
			t.Errorf("canonicalize(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
