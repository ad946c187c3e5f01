package modtl

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// RTLLanguages contains language codes that use right-to-left text direction.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// ParseLanguage validates a language code such as "EN", "ja", "pt_BR" or
// "EN-GB" and returns its BCP 47 tag.
func ParseLanguage(code string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
	if err != nil {
		return language.Und, &ConfigError{Message: "invalid language code " + code, Cause: err}
	}
	return tag, nil
}

// BaseLanguage returns the lower-case ISO 639-1 base of a code ("ja" for "JA").
// Unparseable codes are returned lower-cased up to the first separator.
func BaseLanguage(code string) string {
	tag, err := ParseLanguage(code)
	if err != nil {
		base, _, _ := strings.Cut(strings.ReplaceAll(code, "_", "-"), "-")
		return strings.ToLower(base)
	}
	base, _ := tag.Base()
	return base.String()
}

// DeepLCode converts a code to the upper-case form DeepL expects. Source
// languages carry no region ("EN"); targets keep it ("EN-GB", "PT-BR").
func DeepLCode(code string, source bool) string {
	tag, err := ParseLanguage(code)
	if err != nil {
		return strings.ToUpper(code)
	}
	base, _ := tag.Base()
	if source {
		return strings.ToUpper(base.String())
	}
	if region, conf := tag.Region(); conf == language.Exact {
		return strings.ToUpper(base.String() + "-" + region.String())
	}
	if script, conf := tag.Script(); conf == language.Exact {
		return strings.ToUpper(base.String() + "-" + script.String())
	}
	return strings.ToUpper(base.String())
}

// GetLanguageName returns the English name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(code string) string {
	tag, err := ParseLanguage(code)
	if err != nil {
		return code
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return code
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(code string) string {
	if RTLLanguages[BaseLanguage(code)] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(code string) bool {
	return GetDirection(code) == "rtl"
}

// ToHTMLLang converts a code to the HTML lang attribute format ("pt_BR" → "pt-BR").
func ToHTMLLang(code string) string {
	tag, err := ParseLanguage(code)
	if err != nil {
		return strings.ReplaceAll(code, "_", "-")
	}
	return tag.String()
}
