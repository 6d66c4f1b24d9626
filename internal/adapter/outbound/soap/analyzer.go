// Package soap analyzes WSDL documents and SOAP responses: inline WSDL,
// WSDL fetched from a URL, live SOAP endpoints and pasted XML samples.
package soap

import (
	"context"
	"encoding/base64"
	"log/slog"

	"github.com/schemalens/schemalens/internal/domain"
	"github.com/schemalens/schemalens/internal/fetch"
	"github.com/schemalens/schemalens/internal/format"
	"github.com/schemalens/schemalens/internal/infer"
)

// Analyzer implements the wsdl, wsdl_url, soap_endpoint and
// soap_xml_sample modes. The four share the same WSDL parser and envelope
// reader; only the way the XML is obtained differs.
type Analyzer struct {
	guard  *fetch.Guard
	logger *slog.Logger
}

// New creates a SOAP Analyzer backed by the shared request guard.
func New(guard *fetch.Guard, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		guard:  guard,
		logger: logger.With("component", "soap_analyzer"),
	}
}

// Analyze dispatches on the request mode.
func (a *Analyzer) Analyze(ctx context.Context, req domain.AnalyzeRequest) ([]domain.RawResource, error) {
	switch req.Mode {
	case domain.ModeWSDL:
		return a.analyzeWSDL(req, []byte(req.WSDLContent))
	case domain.ModeWSDLURL:
		data, err := a.guard.Get(ctx, req.WSDLURL, map[string]string{"Accept": "text/xml, application/xml"})
		if err != nil {
			return nil, err
		}
		return a.analyzeWSDL(req, data)
	case domain.ModeSOAPEndpoint:
		return a.analyzeEndpoint(ctx, req)
	case domain.ModeSOAPXMLSample:
		return a.analyzeSample([]byte(req.SampleXML), req.OperationName, req.BaseURL)
	default:
		return nil, domain.NewError(domain.ErrInvalidInput, "mode %q is not a SOAP mode", string(req.Mode))
	}
}

func (a *Analyzer) analyzeWSDL(req domain.AnalyzeRequest, data []byte) ([]domain.RawResource, error) {
	raws, err := ParseWSDL(data)
	if err != nil {
		a.logger.Warn("Failed to parse WSDL", slog.String("source", RedactedWSDLSource(req)), slog.Any("error", err))
		return nil, err
	}
	a.logger.Info("Extracted resources from WSDL",
		slog.String("source", RedactedWSDLSource(req)), slog.Int("resource_count", len(raws)))
	return raws, nil
}

// analyzeEndpoint performs one live SOAP call and analyzes the response
// like a pasted sample. Basic auth travels as an HTTP header; WSSE travels
// inside the envelope.
func (a *Analyzer) analyzeEndpoint(ctx context.Context, req domain.AnalyzeRequest) ([]domain.RawResource, error) {
	headers := map[string]string{
		"SOAPAction": `"` + req.SOAPAction + `"`,
	}
	if req.AuthType == "basic" && req.Username != "" && req.Password != "" {
		headers["Authorization"] = "Basic " +
			base64.StdEncoding.EncodeToString([]byte(req.Username+":"+req.Password))
	}

	body := req.RequestBody
	if body == "" {
		body = BuildEnvelope(req.SOAPAction, req.AuthType, req.Username, req.Password, req.WSSEToken)
	}

	safeURL := fetch.RedactURL(req.BaseURL)
	a.logger.Info("Calling SOAP endpoint", slog.String("url", safeURL),
		slog.String("operation", OperationFromAction(req.SOAPAction)))

	respXML, err := a.guard.Post(ctx, req.BaseURL, "text/xml; charset=utf-8", []byte(body), headers)
	if err != nil {
		return nil, err
	}

	root, err := format.ParseXML(respXML)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, err,
			"SOAP endpoint %s returned invalid XML", safeURL)
	}
	if fault, ok := FaultMessage(root); ok {
		a.logger.Warn("SOAP endpoint returned a fault", slog.String("fault", fault))
		return nil, domain.NewError(domain.ErrInvalidInput, "SOAP fault: %s", fault)
	}

	return a.resourcesFromEnvelope(root, OperationFromAction(req.SOAPAction), req.BaseURL)
}

func (a *Analyzer) analyzeSample(data []byte, operationName, baseURL string) ([]domain.RawResource, error) {
	root, err := format.ParseXML(data)
	if err != nil {
		a.logger.Warn("Sample is not valid XML", slog.Any("error", err))
		return nil, domain.WrapError(domain.ErrInvalidInput, err, "sampleXml is not valid XML")
	}
	if fault, ok := FaultMessage(root); ok {
		return nil, domain.NewError(domain.ErrInvalidInput, "SOAP fault: %s", fault)
	}
	return a.resourcesFromEnvelope(root, operationName, baseURL)
}

// resourcesFromEnvelope turns one parsed SOAP response into a raw resource
// named after the operation.
func (a *Analyzer) resourcesFromEnvelope(root *format.Element, operationName, endpoint string) ([]domain.RawResource, error) {
	body := ExtractBody(root)
	records := ExtractRecords(body)
	if len(records) == 0 {
		a.logger.Info("No data records found in SOAP response",
			slog.String("operation", operationName))
		return nil, nil
	}

	fields := FieldsFromRecords(records)
	if len(fields) == 0 {
		return nil, nil
	}

	return []domain.RawResource{{
		Name:     infer.ResourceFromOperation(operationName),
		Endpoint: endpoint,
		Fields:   fields,
		Declared: OperationsFromName(operationName),
		IsList:   len(records) > 1,
	}}, nil
}
