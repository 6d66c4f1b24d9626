package infer

import (
	"regexp"
	"strings"
)

var (
	pathParamPattern  = regexp.MustCompile(`\{([^}]+)\}`)
	camelSnakeFirst   = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	camelSnakeSecond  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	versionedSegments = map[string]bool{"api": true, "v1": true, "v2": true, "v3": true}
)

// ResourceFromPath extracts a resource name from an API path: the last
// segment that is not a path parameter, not purely numeric, and not a
// version prefix like /api/v1. Returns "" when no segment qualifies.
//
//	ResourceFromPath("/api/v1/users")     == "users"
//	ResourceFromPath("/users/{id}")       == "users"
//	ResourceFromPath("/api/v1/users/1")   == "users"
func ResourceFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" || strings.HasPrefix(seg, "{") || isDigits(seg) || versionedSegments[strings.ToLower(seg)] {
			continue
		}
		return strings.ToLower(seg)
	}
	return ""
}

// EndpointFromPath strips path parameters from an endpoint, keeping the
// collection prefix: /users/{id} becomes /users.
func EndpointFromPath(path string) string {
	if i := strings.Index(path, "{"); i >= 0 {
		path = path[:i]
	}
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// PrimaryKeyHintFromPath returns the first path parameter that looks like
// an identifier, e.g. {id}, {userId}, {user_id}.
func PrimaryKeyHintFromPath(path string) string {
	for _, m := range pathParamPattern.FindAllStringSubmatch(path, -1) {
		if strings.Contains(strings.ToLower(m[1]), "id") {
			return m[1]
		}
	}
	return ""
}

// Singularize converts a plural resource name to its singular form with the
// same small heuristic set legacy names tend to follow.
func Singularize(name string) string {
	if len(name) <= 3 {
		return name
	}
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 4:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses") && len(name) > 4:
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s"):
		return name[:len(name)-1]
	default:
		return name
	}
}

// Pluralize is the inverse heuristic, used when naming resources after SOAP
// types and operations.
func Pluralize(name string) string {
	switch {
	case name == "":
		return name
	case strings.HasSuffix(name, "s"):
		return name
	case strings.HasSuffix(name, "y"):
		return name[:len(name)-1] + "ies"
	case strings.HasSuffix(name, "ch"), strings.HasSuffix(name, "sh"),
		strings.HasSuffix(name, "x"), strings.HasSuffix(name, "z"):
		return name + "es"
	default:
		return name + "s"
	}
}

// CamelToSnake converts CamelCase to snake_case.
func CamelToSnake(name string) string {
	s := camelSnakeFirst.ReplaceAllString(name, "${1}_${2}")
	return strings.ToLower(camelSnakeSecond.ReplaceAllString(s, "${1}_${2}"))
}

// ResourceFromOperation derives a plural resource name from a SOAP/RPC
// operation name, e.g. GetCustomersResponse becomes "customers".
func ResourceFromOperation(operationName string) string {
	name := operationName
	for _, prefix := range []string{"Get", "Create", "Update", "Delete", "List", "Find", "Search"} {
		if strings.HasPrefix(name, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	for _, suffix := range []string{"Response", "Request", "Result"} {
		name = strings.TrimSuffix(name, suffix)
	}
	name = CamelToSnake(name)
	if name == "" {
		return "resources"
	}
	if !strings.HasSuffix(name, "s") {
		name = Pluralize(name)
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
