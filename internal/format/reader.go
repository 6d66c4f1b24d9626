// Package format decodes raw request payloads into generic trees. JSON and
// YAML decode into the domain.Value union with object order preserved; XML
// decodes into a lightweight element tree used by the WSDL and SOAP
// analyzers.
package format

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/schemalens/schemalens/internal/domain"
)

// Hint tells Decode which parser to try first. HintUnknown attempts JSON
// and falls back to YAML. HintXML is rejected by Decode; XML payloads go
// through ParseXML, which returns an element tree instead of a Value.
type Hint string

const (
	HintJSON    Hint = "json"
	HintYAML    Hint = "yaml"
	HintXML     Hint = "xml"
	HintUnknown Hint = "unknown"
)

// FormatError reports a parse failure with a human-readable location where
// the underlying parser provides one. Format failures are always surfaced;
// a malformed document never silently becomes an empty schema.
type FormatError struct {
	Details string
	cause   error
}

func (e *FormatError) Error() string { return "format error: " + e.Details }

func (e *FormatError) Unwrap() error { return e.cause }

// Decode parses data according to hint and returns a generic tree.
func Decode(data []byte, hint Hint) (domain.Value, error) {
	switch hint {
	case HintJSON:
		return DecodeJSON(data)
	case HintYAML:
		return DecodeYAML(data)
	case HintXML:
		// Guards against YAML reading "<a/>" as a scalar string.
		return domain.Value{}, &FormatError{Details: "XML input must be parsed with ParseXML"}
	default:
		v, jsonErr := DecodeJSON(data)
		if jsonErr == nil {
			return v, nil
		}
		v, yamlErr := DecodeYAML(data)
		if yamlErr == nil {
			return v, nil
		}
		return domain.Value{}, &FormatError{
			Details: fmt.Sprintf("not valid JSON (%v) nor YAML (%v)", jsonErr, yamlErr),
			cause:   yamlErr,
		}
	}
}

// DecodeJSON parses strict JSON, keeping object member order.
func DecodeJSON(data []byte) (domain.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return domain.Value{}, &FormatError{Details: "invalid JSON: " + err.Error(), cause: err}
	}
	if dec.More() {
		return domain.Value{}, &FormatError{Details: "invalid JSON: trailing content after document"}
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (domain.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return domain.Value{}, fmt.Errorf("unexpected end of input")
		}
		return domain.Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			var members []domain.Member
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return domain.Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return domain.Value{}, fmt.Errorf("object key is not a string")
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return domain.Value{}, err
				}
				members = append(members, domain.Member{Key: key, Val: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return domain.Value{}, err
			}
			return domain.Value{Kind: domain.KindObject, Obj: members}, nil
		case '[':
			var items []domain.Value
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return domain.Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return domain.Value{}, err
			}
			return domain.Value{Kind: domain.KindArray, Arr: items}, nil
		default:
			return domain.Value{}, fmt.Errorf("unexpected delimiter %v", t)
		}
	case string:
		return domain.StringValue(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return domain.Value{}, err
		}
		return domain.NumberValue(f), nil
	case bool:
		return domain.BoolValue(t), nil
	case nil:
		return domain.Null(), nil
	default:
		return domain.Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

// DecodeYAML parses a YAML document. yaml.v3 node trees keep mapping order,
// so the resulting Value unwraps identically on every call. YAML parse
// errors carry line numbers from the underlying parser.
func DecodeYAML(data []byte) (domain.Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return domain.Value{}, &FormatError{Details: "invalid YAML: " + err.Error(), cause: err}
	}
	node := &root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return domain.Null(), nil
		}
		node = node.Content[0]
	}
	v, err := yamlNodeToValue(node)
	if err != nil {
		return domain.Value{}, &FormatError{Details: err.Error(), cause: err}
	}
	return v, nil
}

func yamlNodeToValue(node *yaml.Node) (domain.Value, error) {
	switch node.Kind {
	case yaml.MappingNode:
		members := make([]domain.Member, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := yamlNodeToValue(node.Content[i+1])
			if err != nil {
				return domain.Value{}, err
			}
			members = append(members, domain.Member{Key: node.Content[i].Value, Val: val})
		}
		return domain.Value{Kind: domain.KindObject, Obj: members}, nil
	case yaml.SequenceNode:
		items := make([]domain.Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := yamlNodeToValue(child)
			if err != nil {
				return domain.Value{}, err
			}
			items = append(items, item)
		}
		return domain.Value{Kind: domain.KindArray, Arr: items}, nil
	case yaml.ScalarNode:
		switch node.Tag {
		case "!!null":
			return domain.Null(), nil
		case "!!bool":
			b, err := strconv.ParseBool(strings.ToLower(node.Value))
			if err != nil {
				return domain.StringValue(node.Value), nil
			}
			return domain.BoolValue(b), nil
		case "!!int", "!!float":
			f, err := strconv.ParseFloat(node.Value, 64)
			if err != nil {
				return domain.StringValue(node.Value), nil
			}
			return domain.NumberValue(f), nil
		default:
			return domain.StringValue(node.Value), nil
		}
	case yaml.AliasNode:
		if node.Alias != nil {
			return yamlNodeToValue(node.Alias)
		}
		return domain.Null(), nil
	default:
		return domain.Value{}, fmt.Errorf("unsupported YAML node kind %d at line %d", node.Kind, node.Line)
	}
}

// Element is one node of a parsed XML document. Names and attribute keys
// are namespace-stripped local names.
type Element struct {
	Name     string
	Attrs    map[string]string
	Children []*Element
	Text     string
}

// ParseXML parses an XML document into an element tree.
func ParseXML(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var root *Element
	var stack []*Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{Details: "invalid XML: " + err.Error(), cause: err}
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &FormatError{Details: "invalid XML: multiple root elements"}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &FormatError{Details: "invalid XML: unbalanced end element"}
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				text := strings.TrimSpace(string(t))
				if text != "" {
					top := stack[len(stack)-1]
					if top.Text != "" {
						top.Text += " "
					}
					top.Text += text
				}
			}
		}
	}
	if root == nil {
		return nil, &FormatError{Details: "invalid XML: empty document"}
	}
	if len(stack) != 0 {
		return nil, &FormatError{Details: "invalid XML: unclosed elements"}
	}
	return root, nil
}

// Walk visits el and every descendant in document order.
func (el *Element) Walk(visit func(*Element)) {
	visit(el)
	for _, child := range el.Children {
		child.Walk(visit)
	}
}

// Find returns the first element in document order whose local name matches.
func (el *Element) Find(name string) *Element {
	var found *Element
	el.Walk(func(e *Element) {
		if found == nil && e.Name == name {
			found = e
		}
	})
	return found
}

// Attr returns the named attribute or an empty string.
func (el *Element) Attr(name string) string { return el.Attrs[name] }
