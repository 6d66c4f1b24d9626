// Package openapi analyzes OpenAPI documents, inline or fetched from a
// URL, and groups their paths into normalized resources.
package openapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/fetch"
	"github.com/schemalens/schemalens/internal/infer"
)

// Analyzer implements the openapi and openapi_url modes with kin-openapi.
// External $refs are never followed; a spec must be self-contained.
type Analyzer struct {
	guard  *fetch.Guard
	logger *slog.Logger
}

// New creates an OpenAPI Analyzer. The guard is only exercised in
// openapi_url mode.
func New(guard *fetch.Guard, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		guard:  guard,
		logger: logger.With("component", "openapi_analyzer"),
	}
}

// Analyze loads the document and walks its paths in sorted order, merging
// every path that names the same resource (collection, detail, nested
// variants) into one raw resource. Fields come from the first success
// response schema seen for the resource; the declared types win over
// sample inference downstream.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalyzeRequest) ([]domain.RawResource, error) {
	data := []byte(req.SpecJSON)
	if req.Mode == domain.ModeOpenAPIURL {
		fetched, err := a.guard.Get(ctx, req.SpecURL, map[string]string{"Accept": "application/json, application/yaml"})
		if err != nil {
			return nil, err
		}
		data = fetched
	}

	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		a.logger.Warn("Failed to parse OpenAPI document", slog.Any("error", err))
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid OpenAPI specification")
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		a.logger.Info("OpenAPI document declares no paths")
		return nil, nil
	}

	grouped := a.groupResources(doc)

	raws := make([]domain.RawResource, 0, len(grouped.order))
	for _, name := range grouped.order {
		raws = append(raws, *grouped.byName[name])
	}
	a.logger.Info("Extracted resources from OpenAPI document",
		slog.Int("path_count", doc.Paths.Len()), slog.Int("resource_count", len(raws)))
	return raws, nil
}

type resourceGroups struct {
	order  []string
	byName map[string]*domain.RawResource
}

// groupResources folds every path into a per-resource accumulator. Paths
// iterate in sorted order so collection paths (/users) are visited before
// their parameterized variants (/users/{id}) and the collection endpoint
// wins as the resource endpoint.
func (a *Analyzer) groupResources(doc *openapi3.T) resourceGroups {
	groups := resourceGroups{byName: make(map[string]*domain.RawResource)}

	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for p := range paths {
		keys = append(keys, p)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		name := infer.ResourceFromPath(path)
		if name == "" {
			continue
		}
		hasParam := strings.Contains(path, "{")

		raw, seen := groups.byName[name]
		if !seen {
			raw = &domain.RawResource{Name: name, Endpoint: infer.EndpointFromPath(path)}
			groups.byName[name] = raw
			groups.order = append(groups.order, name)
		}
		if hasParam {
			raw.HasDetailPath = true
			if raw.PrimaryKeyHint == "" {
				raw.PrimaryKeyHint = infer.PrimaryKeyHintFromPath(path)
			}
		} else {
			// A parameter-free variant is the canonical collection endpoint.
			raw.Endpoint = infer.EndpointFromPath(path)
		}

		for _, method := range sortedMethods(item.Operations()) {
			op := item.Operations()[method]
			raw.Methods = appendUnique(raw.Methods, method)
			if len(raw.Fields) == 0 {
				raw.Fields = a.fieldsFromOperation(op)
			}
			if method == http.MethodGet && !hasParam {
				raw.IsList = true
			}
		}
	}
	return groups
}

func sortedMethods(ops map[string]*openapi3.Operation) []string {
	methods := make([]string, 0, len(ops))
	for m := range ops {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

// fieldsFromOperation extracts fields from the operation's first success
// response with a JSON schema. 200 and 201 are preferred over other 2xx
// codes and "default".
func (a *Analyzer) fieldsFromOperation(op *openapi3.Operation) []domain.RawField {
	if op == nil || op.Responses == nil {
		return nil
	}
	schema := successSchema(op.Responses)
	if schema == nil {
		return nil
	}
	return fieldsFromSchema(schema, make(map[*openapi3.Schema]bool))
}

func successSchema(responses *openapi3.Responses) *openapi3.SchemaRef {
	respMap := responses.Map()
	if respMap == nil {
		return nil
	}

	candidates := []string{"200", "201"}
	other := make([]string, 0, len(respMap))
	for status := range respMap {
		if strings.HasPrefix(status, "2") && status != "200" && status != "201" {
			other = append(other, status)
		}
	}
	sort.Strings(other)
	candidates = append(candidates, other...)
	candidates = append(candidates, "default")

	for _, status := range candidates {
		resp := respMap[status]
		if resp == nil || resp.Value == nil || resp.Value.Content == nil {
			continue
		}
		media := resp.Value.Content.Get("application/json")
		if media == nil || media.Schema == nil || media.Schema.Value == nil {
			continue
		}
		return media.Schema
	}
	return nil
}

// fieldsFromSchema flattens a response schema into fields. Arrays unwrap to
// their item schema and envelope objects unwrap to their record schema, so
// both `{"data": [Item]}` and bare `[Item]` yield Item's fields. Nested
// object properties flatten one level with dotted names; anything deeper
// degrades to string.
func fieldsFromSchema(ref *openapi3.SchemaRef, visited map[*openapi3.Schema]bool) []domain.RawField {
	schema := resolve(ref, visited)
	if schema == nil {
		return nil
	}

	if record := recordSchema(schema, visited); record != nil {
		schema = record
	}
	if len(schema.Properties) == 0 {
		return nil
	}

	fields := make([]domain.RawField, 0, len(schema.Properties))
	for _, propName := range sortedProps(schema.Properties) {
		prop := resolve(schema.Properties[propName], visited)
		if prop == nil {
			fields = append(fields, domain.RawField{Name: propName, Declared: domain.FieldString})
			continue
		}
		if typeOf(prop) == "object" && len(prop.Properties) > 0 {
			for _, nested := range sortedProps(prop.Properties) {
				nestedSchema := resolve(prop.Properties[nested], visited)
				fields = append(fields, domain.RawField{
					Name:     propName + "." + nested,
					Declared: declaredType(nestedSchema),
				})
			}
			continue
		}
		fields = append(fields, domain.RawField{Name: propName, Declared: declaredType(prop)})
	}
	return fields
}

// recordSchema digs through array items and response envelopes until it
// reaches the schema describing one record. The envelope keys mirror the
// runtime unwrap allow-list.
func recordSchema(schema *openapi3.Schema, visited map[*openapi3.Schema]bool) *openapi3.Schema {
	for depth := 0; depth < 3 && schema != nil; depth++ {
		switch {
		case typeOf(schema) == "array" && schema.Items != nil:
			schema = resolve(schema.Items, visited)
		case typeOf(schema) == "object" || typeOf(schema) == "":
			inner := envelopeMember(schema, visited)
			if inner == nil {
				return schema
			}
			schema = inner
		default:
			return nil
		}
	}
	return schema
}

var envelopeKeys = []string{"data", "result", "results", "items", "value", "records", "response", "payload"}

func envelopeMember(schema *openapi3.Schema, visited map[*openapi3.Schema]bool) *openapi3.Schema {
	for _, key := range envelopeKeys {
		for propName, propRef := range schema.Properties {
			if !strings.EqualFold(propName, key) {
				continue
			}
			prop := resolve(propRef, visited)
			if prop == nil {
				continue
			}
			if typeOf(prop) == "array" || (typeOf(prop) == "object" && len(prop.Properties) > 0) {
				return prop
			}
			// Rejected probe: unmark so a later genuine resolve still works.
			delete(visited, propRef.Value)
		}
	}
	if len(schema.Properties) == 1 {
		for _, propRef := range schema.Properties {
			prop := resolve(propRef, visited)
			if prop != nil && typeOf(prop) == "array" {
				return prop
			}
			if propRef != nil {
				delete(visited, propRef.Value)
			}
		}
	}
	return nil
}

// resolve unwraps a SchemaRef, merging allOf members and guarding against
// reference cycles.
func resolve(ref *openapi3.SchemaRef, visited map[*openapi3.Schema]bool) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	schema := ref.Value
	if visited[schema] {
		return nil
	}
	visited[schema] = true

	if len(schema.AllOf) > 0 {
		merged := &openapi3.Schema{Type: schema.Type, Properties: openapi3.Schemas{}}
		for name, prop := range schema.Properties {
			merged.Properties[name] = prop
		}
		for _, part := range schema.AllOf {
			partSchema := resolve(part, visited)
			if partSchema == nil {
				continue
			}
			if merged.Type == nil {
				merged.Type = partSchema.Type
			}
			for name, prop := range partSchema.Properties {
				if _, exists := merged.Properties[name]; !exists {
					merged.Properties[name] = prop
				}
			}
		}
		return merged
	}
	return schema
}

func typeOf(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil || len(*schema.Type) == 0 {
		return ""
	}
	return (*schema.Type)[0]
}

func declaredType(schema *openapi3.Schema) domain.FieldType {
	if schema == nil {
		return domain.FieldString
	}
	maxLength := 0
	if schema.MaxLength != nil {
		maxLength = int(*schema.MaxLength)
	}
	return infer.TypeFromDeclared(typeOf(schema), schema.Format, maxLength)
}

func sortedProps(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
