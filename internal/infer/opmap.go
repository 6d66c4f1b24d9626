package infer

import (
	"strings"

	"github.com/schemalens/schemalens/internal/domain"
)

// MapOperations resolves a raw resource's observations into CRUD tags, in
// canonical order. Declared operations (SOAP) win over observed HTTP
// methods; with neither, the payload shape picks the conservative default:
// list for an array, detail for a single object.
func MapOperations(raw domain.RawResource) []domain.Operation {
	if len(raw.Declared) > 0 {
		return canonicalOps(raw.Declared)
	}
	if len(raw.Methods) > 0 {
		return MapMethods(raw.Methods, raw.HasDetailPath)
	}
	if raw.IsList {
		return []domain.Operation{domain.OpList}
	}
	return []domain.Operation{domain.OpDetail}
}

// MapMethods maps observed HTTP methods to CRUD tags. GET implies list, and
// additionally detail when a path-parameter variant of the resource exists.
func MapMethods(methods []string, hasDetailPath bool) []domain.Operation {
	var ops []domain.Operation
	for _, m := range methods {
		switch strings.ToUpper(m) {
		case "GET":
			ops = append(ops, domain.OpList)
			if hasDetailPath {
				ops = append(ops, domain.OpDetail)
			}
		case "POST":
			ops = append(ops, domain.OpCreate)
		case "PUT", "PATCH":
			ops = append(ops, domain.OpUpdate)
		case "DELETE":
			ops = append(ops, domain.OpDelete)
		}
	}
	return canonicalOps(ops)
}

// OperationFromName classifies a SOAP/RPC operation name into one CRUD tag.
func OperationFromName(name string) domain.Operation {
	lower := strings.ToLower(name)

	for _, p := range []string{"getall", "getlist", "list", "search", "find", "query"} {
		if strings.Contains(lower, p) {
			return domain.OpList
		}
	}
	for _, p := range []string{"create", "add", "insert", "new", "register"} {
		if strings.Contains(lower, p) {
			return domain.OpCreate
		}
	}
	for _, p := range []string{"update", "modify", "edit", "save", "change"} {
		if strings.Contains(lower, p) {
			return domain.OpUpdate
		}
	}
	for _, p := range []string{"delete", "remove", "destroy", "cancel"} {
		if strings.Contains(lower, p) {
			return domain.OpDelete
		}
	}
	return domain.OpDetail
}

// canonicalOps deduplicates, drops anything outside the closed set, and
// orders by domain.OperationOrder. The result is never nil so an empty
// operation set serializes as [] rather than null.
func canonicalOps(ops []domain.Operation) []domain.Operation {
	present := make(map[domain.Operation]bool, len(ops))
	for _, op := range ops {
		present[op] = true
	}
	out := make([]domain.Operation, 0, len(present))
	for _, op := range domain.OperationOrder {
		if present[op] {
			out = append(out, op)
		}
	}
	return out
}
