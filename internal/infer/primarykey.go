package infer

import "strings"

// fallbackKeyTokens are identifier-ish tokens checked after the exact and
// resource-scoped tiers. Matching is whole-token, so "provider" never
// matches "id" and "customer_key" matches "key".
var fallbackKeyTokens = map[string]bool{
	"key": true, "code": true, "uuid": true, "guid": true,
	"pk": true, "no": true, "num": true, "seq": true,
}

// DetectPrimaryKey selects the field name that best identifies a record.
// Tiers, in order: exact "id"; exact "_id"; resource-scoped patterns
// ({singular}_id, {singular}Id, and the same with the raw resource name);
// then the fallback token list. A tier resolves only when exactly one field
// matches it; zero or ambiguous matches fall through. When nothing
// resolves, the literal "id" is returned even if no such field exists -- a
// dangling key is an accepted outcome that downstream consumers tolerate.
func DetectPrimaryKey(resourceName string, fieldNames []string) string {
	if len(fieldNames) == 0 {
		return "id"
	}

	for _, name := range fieldNames {
		if name == "id" {
			return name
		}
	}
	for _, name := range fieldNames {
		if name == "_id" {
			return name
		}
	}

	if resourceName != "" {
		patterns := resourceKeyPatterns(resourceName)
		if match, ok := uniqueMatch(fieldNames, func(name string) bool {
			lower := strings.ToLower(name)
			for _, p := range patterns {
				if lower == p {
					return true
				}
			}
			return false
		}); ok {
			return match
		}
	}

	if match, ok := uniqueMatch(fieldNames, func(name string) bool {
		for _, tok := range splitTokens(name) {
			if fallbackKeyTokens[tok] {
				return true
			}
		}
		return false
	}); ok {
		return match
	}

	return "id"
}

func resourceKeyPatterns(resourceName string) []string {
	lower := strings.ToLower(resourceName)
	singular := Singularize(lower)
	patterns := []string{singular + "_id", singular + "id"}
	if lower != singular {
		patterns = append(patterns, lower+"_id", lower+"id")
	}
	return patterns
}

// uniqueMatch returns the single field satisfying match, or false when zero
// or more than one do.
func uniqueMatch(fieldNames []string, match func(string) bool) (string, bool) {
	found := ""
	for _, name := range fieldNames {
		if !match(name) {
			continue
		}
		if found != "" {
			return "", false
		}
		found = name
	}
	return found, found != ""
}

// splitTokens breaks an identifier into lowercase tokens on underscores,
// hyphens and camelCase boundaries.
func splitTokens(name string) []string {
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, strings.ToLower(string(current)))
			current = current[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case i > 0 && isUpper(r) && isLower(runes[i-1]):
			flush()
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return tokens
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
