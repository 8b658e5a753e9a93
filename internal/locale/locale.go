package locale

import "strings"

type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
}

// Supported is the fixed language table shared by every selector and by the
// display-language resolution rules.
var Supported = []Language{
	{Code: "ar", Name: "Arabic", NativeName: "العربية"},
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語"},
	{Code: "ko", Name: "Korean", NativeName: "한국어"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português"},
	{Code: "ru", Name: "Russian", NativeName: "Русский"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt"},
	{Code: "zh-TW", Name: "Traditional Chinese", NativeName: "台灣-繁體中文"},
}

// EffectiveCode resolves the display/target language code. Order: explicit
// stored preference, Chinese-family locales collapse to zh-TW, a supported
// primary subtag, then English. It never fails.
func EffectiveCode(stored, uiLocale string) string {
	if stored != "" && stored != "default" {
		return stored
	}
	lang := strings.ToLower(strings.TrimSpace(uiLocale))
	if strings.HasPrefix(lang, "zh") {
		return "zh-TW"
	}
	primary := lang
	if idx := strings.IndexByte(primary, '-'); idx >= 0 {
		primary = primary[:idx]
	}
	for _, l := range Supported {
		if l.Code == primary {
			return primary
		}
	}
	return "en"
}

// NameForCode maps a language code to its English name, falling back to
// English for anything outside the table.
func NameForCode(code string) string {
	for _, l := range Supported {
		if l.Code == code {
			return l.Name
		}
	}
	return "English"
}

// EffectiveName is EffectiveCode followed by the name lookup.
func EffectiveName(stored, uiLocale string) string {
	return NameForCode(EffectiveCode(stored, uiLocale))
}

// ResolveTarget turns a target-language selector value into a concrete
// language name. The empty string and the "system-default" sentinel both
// resolve through the display-language rules.
func ResolveTarget(value, stored, uiLocale string) string {
	if value == "" || value == "system-default" {
		return EffectiveName(stored, uiLocale)
	}
	return value
}
