package fs

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var multiUnderscore = regexp.MustCompile(`_+`)

// ToSnakeCase converts a title to lowercase snake_case
// "My Card Title!" -> "my_card_title"
func ToSnakeCase(title string) string {
	s := strings.ToLower(title)
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)

	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			result.WriteRune(r)
		}
	}
	s = multiUnderscore.ReplaceAllString(result.String(), "_")
	s = strings.Trim(s, "_")

	if s == "" {
		s = "card"
	}
	return s
}

// filenames hands out unique card file names within one export
type filenames map[string]int

// next returns base.md, then base_2.md, base_3.md, ... for repeated titles
func (f filenames) next(title string) string {
	base := ToSnakeCase(title)
	f[base]++
	if n := f[base]; n > 1 {
		return base + "_" + strconv.Itoa(n) + ".md"
	}
	return base + ".md"
}
