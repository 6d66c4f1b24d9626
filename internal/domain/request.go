package domain

import (
	"encoding/json"
	"strings"
)

// Mode selects which analyzer runs for a request.
type Mode string

const (
	ModeOpenAPI    Mode = "openapi"
	ModeOpenAPIURL Mode = "openapi_url"
	ModeEndpoint   Mode = "endpoint"
	ModeJSONSample Mode = "json_sample"

	ModeWSDL          Mode = "wsdl"
	ModeWSDLURL       Mode = "wsdl_url"
	ModeSOAPEndpoint  Mode = "soap_endpoint"
	ModeSOAPXMLSample Mode = "soap_xml_sample"
)

// Modes lists every supported mode, for validation messages.
var Modes = []Mode{
	ModeOpenAPI, ModeOpenAPIURL, ModeEndpoint, ModeJSONSample,
	ModeWSDL, ModeWSDLURL, ModeSOAPEndpoint, ModeSOAPXMLSample,
}

// RawText accepts either a JSON string or any inline JSON value. A string is
// stored verbatim (it may be YAML); any other value keeps its raw JSON
// encoding. This lets callers pass OpenAPI specs and samples both as
// embedded documents and as text blobs.
type RawText string

func (r *RawText) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawText(s)
		return nil
	}
	*r = RawText(trimmed)
	return nil
}

func (r RawText) String() string { return string(r) }

// AnalyzeRequest is the single request shape for all modes. Only the fields
// relevant to the selected mode are consulted; Validate enforces the
// per-mode requirements before any analyzer runs.
type AnalyzeRequest struct {
	Mode Mode `json:"mode"`

	// OpenAPI modes.
	SpecJSON RawText `json:"specJson,omitempty"`
	SpecURL  string  `json:"specUrl,omitempty"`

	// Endpoint mode.
	BaseURL       string            `json:"baseUrl,omitempty"`
	EndpointPath  string            `json:"endpointPath,omitempty"`
	Method        string            `json:"method,omitempty"`
	AuthType      string            `json:"authType,omitempty"`
	AuthValue     string            `json:"authValue,omitempty"`
	CustomHeaders map[string]string `json:"customHeaders,omitempty"`

	// JSON sample mode. EndpointPath above is also consulted as an optional
	// override for the sample's endpoint.
	SampleJSON RawText `json:"sampleJson,omitempty"`

	// WSDL modes.
	WSDLContent string `json:"wsdlContent,omitempty"`
	WSDLURL     string `json:"wsdlUrl,omitempty"`

	// SOAP endpoint mode.
	SOAPAction  string `json:"soapAction,omitempty"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	WSSEToken   string `json:"wsseToken,omitempty"`
	RequestBody string `json:"requestBody,omitempty"`

	// SOAP XML sample mode.
	SampleXML     string `json:"sampleXml,omitempty"`
	OperationName string `json:"operationName,omitempty"`
}

// Validate checks the cross-field requirements of the selected mode. It
// returns an invalid_input AnalysisError so callers can fail fast before
// touching the network or a parser.
func (r *AnalyzeRequest) Validate() error {
	switch r.Mode {
	case ModeOpenAPI:
		if r.SpecJSON == "" {
			return NewError(ErrInvalidInput, "specJson is required for openapi mode")
		}
	case ModeOpenAPIURL:
		if r.SpecURL == "" {
			return NewError(ErrInvalidInput, "specUrl is required for openapi_url mode")
		}
	case ModeEndpoint:
		if r.BaseURL == "" || r.EndpointPath == "" {
			return NewError(ErrInvalidInput, "baseUrl and endpointPath are required for endpoint mode")
		}
		switch strings.ToUpper(r.Method) {
		case "", "GET", "POST":
		default:
			return NewError(ErrInvalidInput, "unsupported HTTP method %q for endpoint mode", r.Method)
		}
	case ModeJSONSample:
		if r.SampleJSON == "" {
			return NewError(ErrInvalidInput, "sampleJson is required for json_sample mode")
		}
	case ModeWSDL:
		if r.WSDLContent == "" {
			return NewError(ErrInvalidInput, "wsdlContent is required for wsdl mode")
		}
	case ModeWSDLURL:
		if r.WSDLURL == "" {
			return NewError(ErrInvalidInput, "wsdlUrl is required for wsdl_url mode")
		}
	case ModeSOAPEndpoint:
		if r.BaseURL == "" || r.SOAPAction == "" {
			return NewError(ErrInvalidInput, "baseUrl and soapAction are required for soap_endpoint mode")
		}
	case ModeSOAPXMLSample:
		if r.SampleXML == "" || r.OperationName == "" {
			return NewError(ErrInvalidInput, "sampleXml and operationName are required for soap_xml_sample mode")
		}
	default:
		return NewError(ErrInvalidInput, "unknown analysis mode %q (supported: %s)",
			string(r.Mode), supportedModes())
	}
	return nil
}

func supportedModes() string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
