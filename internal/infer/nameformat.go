package infer

import (
	"strings"
	"unicode"
)

// FormatName turns an identifier into a display label: underscores, hyphens
// and camelCase boundaries become word breaks, and each word is title-cased.
// The transform is idempotent, so re-formatting an already formatted label
// is a no-op.
//
//	FormatName("user_id")      == "User Id"
//	FormatName("emailAddress") == "Email Address"
//	FormatName("User Id")      == "User Id"
func FormatName(name string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, titleWord(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case i > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[i-1]):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return strings.Join(words, " ")
}

func titleWord(w string) string {
	runes := []rune(w)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}
