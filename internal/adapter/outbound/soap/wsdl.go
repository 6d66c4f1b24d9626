package soap

import (
	"net/url"
	"strings"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/fetch"
	"github.com/schemalens/schemalens/internal/format"
	"github.com/schemalens/schemalens/internal/infer"
)

// xsdScalarTypes maps XSD scalar types onto the closed field type set.
// Anything absent falls back to string.
var xsdScalarTypes = map[string]domain.FieldType{
	"int":                "number",
	"integer":            "number",
	"long":               "number",
	"short":              "number",
	"byte":               "number",
	"float":              "number",
	"double":             "number",
	"decimal":            "number",
	"positiveInteger":    "number",
	"negativeInteger":    "number",
	"nonPositiveInteger": "number",
	"nonNegativeInteger": "number",
	"unsignedInt":        "number",
	"unsignedLong":       "number",
	"unsignedShort":      "number",
	"unsignedByte":       "number",
	"boolean":            "boolean",
	"date":               "date",
	"dateTime":           "date",
}

// wrapperTypeMarkers identify message wrapper types that describe a call,
// not a data record.
var wrapperTypeMarkers = []string{"request", "response", "result", "message"}

type complexType struct {
	name   string
	fields []domain.RawField
}

// ParseWSDL extracts resources from a WSDL 1.1 document: one resource per
// data-bearing complexType, with operations aggregated from the service's
// portType and the endpoint taken from the binding address.
func ParseWSDL(data []byte) ([]domain.RawResource, error) {
	root, err := format.ParseXML(data)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "invalid WSDL XML")
	}

	types := collectComplexTypes(root)
	ops := collectOperations(root)
	endpoint := serviceEndpoint(root)

	// Message wrapper types describe calls, not records. When everything
	// looks like a wrapper there is nothing better, so keep them all.
	dataTypes := make([]complexType, 0, len(types))
	for _, ct := range types {
		if !isWrapperType(ct.name) {
			dataTypes = append(dataTypes, ct)
		}
	}
	if len(dataTypes) == 0 {
		dataTypes = types
	}

	if len(ops) == 0 {
		ops = []domain.Operation{domain.OpList, domain.OpDetail}
	}

	raws := make([]domain.RawResource, 0, len(dataTypes))
	for _, ct := range dataTypes {
		if len(ct.fields) == 0 {
			continue
		}
		raws = append(raws, domain.RawResource{
			Name:     infer.Pluralize(strings.ToLower(ct.name)),
			Endpoint: endpoint,
			Fields:   ct.fields,
			Declared: ops,
		})
	}
	return raws, nil
}

// collectComplexTypes finds named complexType definitions plus named
// elements with inline complexTypes, in document order.
func collectComplexTypes(root *format.Element) []complexType {
	var types []complexType
	seen := make(map[string]bool)

	add := func(name string, el *format.Element) {
		if name == "" || seen[name] {
			return
		}
		fields := complexTypeFields(el)
		if len(fields) == 0 {
			return
		}
		seen[name] = true
		types = append(types, complexType{name: name, fields: fields})
	}

	root.Walk(func(el *format.Element) {
		switch el.Name {
		case "complexType":
			add(el.Attr("name"), el)
		case "element":
			name := el.Attr("name")
			for _, child := range el.Children {
				if child.Name == "complexType" {
					add(name, child)
				}
			}
		}
	})
	return types
}

// complexTypeFields pulls element declarations out of the type's sequence,
// all or choice containers.
func complexTypeFields(ct *format.Element) []domain.RawField {
	var fields []domain.RawField
	ct.Walk(func(el *format.Element) {
		switch el.Name {
		case "sequence", "all", "choice":
			for _, member := range el.Children {
				if member.Name != "element" {
					continue
				}
				name := member.Attr("name")
				if name == "" {
					continue
				}
				fields = append(fields, domain.RawField{
					Name:     name,
					Declared: xsdFieldType(member.Attr("type")),
				})
			}
		}
	})
	return fields
}

// xsdFieldType resolves a possibly prefixed XSD type reference, e.g.
// "xsd:dateTime" becomes date.
func xsdFieldType(xsdType string) domain.FieldType {
	if i := strings.LastIndex(xsdType, ":"); i >= 0 {
		xsdType = xsdType[i+1:]
	}
	if t, ok := xsdScalarTypes[xsdType]; ok {
		return t
	}
	return domain.FieldString
}

// collectOperations maps every portType operation name onto a CRUD tag.
func collectOperations(root *format.Element) []domain.Operation {
	var ops []domain.Operation
	root.Walk(func(el *format.Element) {
		if el.Name != "portType" {
			return
		}
		for _, op := range el.Children {
			if op.Name == "operation" && op.Attr("name") != "" {
				ops = append(ops, infer.OperationFromName(op.Attr("name")))
			}
		}
	})
	return ops
}

// serviceEndpoint returns the path of the first binding address, or
// /service when the WSDL declares none.
func serviceEndpoint(root *format.Element) string {
	endpoint := "/service"
	root.Walk(func(el *format.Element) {
		if endpoint != "/service" || el.Name != "address" {
			return
		}
		location := el.Attr("location")
		if location == "" {
			return
		}
		if strings.Contains(location, "://") {
			if u, err := url.Parse(location); err == nil && u.Path != "" {
				endpoint = u.Path
			}
			return
		}
		endpoint = location
	})
	return endpoint
}

func isWrapperType(name string) bool {
	lower := strings.ToLower(name)
	for _, marker := range wrapperTypeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// RedactedWSDLSource names the WSDL origin for log and error messages.
func RedactedWSDLSource(req domain.AnalyzeRequest) string {
	if req.Mode == domain.ModeWSDLURL {
		return fetch.RedactURL(req.WSDLURL)
	}
	return "inline WSDL"
}
