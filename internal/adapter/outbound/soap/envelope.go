package soap

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/format"
)

const (
	maxSampledRecords   = 5
	maxCandidateRecords = 10
)

// ExtractBody returns the SOAP Body element, or the root itself for
// non-standard responses without an envelope.
func ExtractBody(root *format.Element) *format.Element {
	if body := root.Find("Body"); body != nil {
		return body
	}
	return root
}

// FaultMessage reports whether the response carries a SOAP fault, with the
// human-readable reason when one is present. It understands both the 1.1
// faultstring and the 1.2 Reason/Text shapes.
func FaultMessage(root *format.Element) (string, bool) {
	fault := root.Find("Fault")
	if fault == nil {
		return "", false
	}
	for _, name := range []string{"faultstring", "Reason", "Text"} {
		if el := fault.Find(name); el != nil && el.Text != "" {
			return el.Text, true
		}
	}
	return "unknown SOAP fault", true
}

// ExtractRecords locates the data records inside a SOAP body with three
// strategies, in order: a run of identically named sibling elements with
// structure, the same run under a *Response or *Result element, and
// finally any element with at least three leaf children. The last resort
// is the body's first child.
func ExtractRecords(body *format.Element) []*format.Element {
	if records := homogeneousRun(body); records != nil {
		return records
	}

	var underResponse []*format.Element
	body.Walk(func(el *format.Element) {
		if underResponse != nil {
			return
		}
		if strings.Contains(el.Name, "Response") || strings.Contains(el.Name, "Result") {
			underResponse = homogeneousRun(el)
		}
	})
	if underResponse != nil {
		return underResponse
	}

	var candidates []*format.Element
	body.Walk(func(el *format.Element) {
		if len(candidates) >= maxCandidateRecords {
			return
		}
		leaves := 0
		for _, child := range el.Children {
			if len(child.Children) == 0 {
				leaves++
			}
		}
		if leaves >= 3 {
			candidates = append(candidates, el)
		}
	})
	if len(candidates) > 0 {
		return candidates
	}

	if len(body.Children) > 0 {
		return body.Children[:1]
	}
	return nil
}

// homogeneousRun finds the first element with two or more children that
// all share one name and have structure of their own, the shape SOAP list
// responses take. One child is not a run; a lone wrapper would otherwise
// swallow its records.
func homogeneousRun(root *format.Element) []*format.Element {
	var records []*format.Element
	root.Walk(func(el *format.Element) {
		if records != nil || len(el.Children) < 2 {
			return
		}
		name := el.Children[0].Name
		for _, child := range el.Children {
			if child.Name != name {
				return
			}
		}
		if len(el.Children[0].Children) > 0 {
			records = el.Children
		}
	})
	return records
}

// FieldsFromRecords builds raw fields from up to five records, collecting
// the text of each leaf child as a sample. Field order follows the first
// record; later records only contribute samples.
func FieldsFromRecords(records []*format.Element) []domain.RawField {
	if len(records) > maxSampledRecords {
		records = records[:maxSampledRecords]
	}

	var order []string
	samples := make(map[string][]domain.Value)
	for _, record := range records {
		for _, child := range record.Children {
			if _, seen := samples[child.Name]; !seen {
				order = append(order, child.Name)
			}
			samples[child.Name] = append(samples[child.Name], coerceText(child.Text))
		}
	}

	fields := make([]domain.RawField, 0, len(order))
	for _, name := range order {
		fields = append(fields, domain.RawField{Name: name, Samples: samples[name]})
	}
	return fields
}

// coerceText maps XML text content onto a typed value so the shared type
// inference can see numbers and booleans instead of raw strings.
func coerceText(text string) domain.Value {
	if text == "" {
		return domain.Null()
	}
	switch text {
	case "true", "false":
		return domain.BoolValue(text == "true")
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return domain.NumberValue(f)
	}
	return domain.StringValue(text)
}

// OperationFromAction extracts the operation name from a SOAPAction value,
// e.g. "http://example.com/service/GetCustomers" yields GetCustomers.
func OperationFromAction(soapAction string) string {
	action := strings.Trim(soapAction, `"`)
	if i := strings.LastIndex(action, "/"); i >= 0 {
		return action[i+1:]
	}
	return action
}

// NamespaceFromAction extracts the namespace portion of a SOAPAction.
func NamespaceFromAction(soapAction string) string {
	action := strings.Trim(soapAction, `"`)
	if i := strings.LastIndex(action, "/"); i >= 0 {
		return action[:i]
	}
	return action
}

// BuildEnvelope constructs the default SOAP 1.1 request for an operation.
// WSSE auth inserts a UsernameToken header; a pre-built wsseToken is
// inserted verbatim and wins over username/password.
func BuildEnvelope(soapAction, authType, username, password, wsseToken string) string {
	operation := OperationFromAction(soapAction)
	namespace := NamespaceFromAction(soapAction)

	securityHeader := ""
	switch {
	case wsseToken != "":
		securityHeader = wsseToken
	case strings.EqualFold(authType, "wsse") && username != "" && password != "":
		securityHeader = BuildWSSEHeader(username, password)
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
               xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
               xmlns:xsd="http://www.w3.org/2001/XMLSchema">
    <soap:Header>
        %s
    </soap:Header>
    <soap:Body>
        <%s xmlns="%s">
        </%s>
    </soap:Body>
</soap:Envelope>`, securityHeader, operation, namespace, operation)
}

// BuildWSSEHeader constructs a WS-Security UsernameToken header with a
// fresh nonce and created timestamp. The password travels as PasswordText,
// matching what the legacy services this targets accept.
func BuildWSSEHeader(username, password string) string {
	nonceBytes := make([]byte, 16)
	_, _ = rand.Read(nonceBytes)
	nonce := base64.StdEncoding.EncodeToString(nonceBytes)
	created := time.Now().UTC().Format("2006-01-02T15:04:05Z")

	return fmt.Sprintf(`<wsse:Security xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"
                       xmlns:wsu="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd">
            <wsse:UsernameToken>
                <wsse:Username>%s</wsse:Username>
                <wsse:Password Type="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText">%s</wsse:Password>
                <wsse:Nonce EncodingType="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-soap-message-security-1.0#Base64Binary">%s</wsse:Nonce>
                <wsu:Created>%s</wsu:Created>
            </wsse:UsernameToken>
        </wsse:Security>`, xmlEscape(username), xmlEscape(password), nonce, created)
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;",
)

func xmlEscape(s string) string { return xmlEscaper.Replace(s) }

// OperationsFromName infers the operation set a sample implies. Seeing one
// response is weaker evidence than a WSDL, so reads imply list and detail
// while writes additionally imply the observed write operation.
func OperationsFromName(operationName string) []domain.Operation {
	lower := strings.ToLower(operationName)

	contains := func(parts ...string) bool {
		for _, p := range parts {
			if strings.Contains(lower, p) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("getall", "list", "search", "find", "query"):
		return []domain.Operation{domain.OpList}
	case contains("create", "add", "insert"):
		return []domain.Operation{domain.OpList, domain.OpDetail, domain.OpCreate}
	case contains("update", "modify", "edit"):
		return []domain.Operation{domain.OpList, domain.OpDetail, domain.OpUpdate}
	case contains("delete", "remove"):
		return []domain.Operation{domain.OpList, domain.OpDetail, domain.OpDelete}
	default:
		return []domain.Operation{domain.OpList, domain.OpDetail}
	}
}
