package slug

import (
	"regexp"
	"strings"
)

var (
	disallowedRegexp = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRegexp = regexp.MustCompile(`\s+`)
	hyphenRunRegexp  = regexp.MustCompile(`-+`)
)

// spanishReplacer transliterates accented Spanish letters to ASCII so that
// they survive the alphanumeric filter.
var spanishReplacer = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u", "ñ", "n",
	"à", "a", "è", "e", "ì", "i", "ò", "o", "ù", "u",
)

// Generate derives a URL slug from a category or brand name.
//
// The name is trimmed and lower-cased, accented letters are transliterated,
// every character outside [a-z0-9], whitespace and '-' is dropped, whitespace
// runs become a single hyphen and hyphen runs are collapsed.
//
// Examples:
//   - "Vinilos Textiles" → "vinilos-textiles"
//   - "Niño - Bebé" → "nino-bebe"
//   - "100% Algodón" → "100-algodon"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = spanishReplacer.Replace(s)
	s = disallowedRegexp.ReplaceAllString(s, "")
	s = whitespaceRegexp.ReplaceAllString(s, "-")
	s = hyphenRunRegexp.ReplaceAllString(s, "-")
	return strings.TrimSpace(s)
}
