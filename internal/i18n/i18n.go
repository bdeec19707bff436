// Package i18n holds the bot's interface strings in Polish, English and
// Russian. Polish is the canonical catalog; other languages fall back to
// it per key, and an unknown key comes back verbatim so a typo is visible
// in chat instead of silently blank.
package i18n

import "strings"

// DefaultLanguage is used for unknown or unset user languages.
const DefaultLanguage = "pl"

// Vars carries named placeholder values for interpolation.
type Vars map[string]string

var catalogs = map[string]map[string]string{
	"pl": catalogPL,
	"en": catalogEN,
	"ru": catalogRU,
}

var displayNames = map[string]string{
	"pl": "Polski 🇵🇱",
	"en": "English 🇬🇧",
	"ru": "Русский 🇷🇺",
}

// Supported reports whether lang has a catalog.
func Supported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// Languages lists the supported language codes in display order.
func Languages() []string { return []string{"pl", "en", "ru"} }

// DisplayName returns the human label for a language code.
func DisplayName(lang string) string {
	if name, ok := displayNames[lang]; ok {
		return name
	}
	return lang
}

// T returns the translated text for key in lang with {placeholder}
// occurrences replaced from vars.
func T(lang, key string, vars Vars) string {
	catalog, ok := catalogs[lang]
	if !ok {
		catalog = catalogs[DefaultLanguage]
	}
	text, ok := catalog[key]
	if !ok {
		text, ok = catalogs[DefaultLanguage][key]
	}
	if !ok {
		return key
	}
	if len(vars) == 0 {
		return text
	}

	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(text)
}
