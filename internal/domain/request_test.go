package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemalens/schemalens/internal/domain"
)

func TestAnalyzeRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     domain.AnalyzeRequest
		wantErr bool
	}{
		{
			name:    "openapi requires specJson",
			req:     domain.AnalyzeRequest{Mode: domain.ModeOpenAPI},
			wantErr: true,
		},
		{
			name: "openapi ok",
			req:  domain.AnalyzeRequest{Mode: domain.ModeOpenAPI, SpecJSON: "{}"},
		},
		{
			name:    "openapi_url requires specUrl",
			req:     domain.AnalyzeRequest{Mode: domain.ModeOpenAPIURL},
			wantErr: true,
		},
		{
			name:    "endpoint requires base and path",
			req:     domain.AnalyzeRequest{Mode: domain.ModeEndpoint, BaseURL: "http://x"},
			wantErr: true,
		},
		{
			name: "endpoint ok with defaults",
			req:  domain.AnalyzeRequest{Mode: domain.ModeEndpoint, BaseURL: "http://x", EndpointPath: "/users"},
		},
		{
			name: "endpoint rejects unsupported method",
			req: domain.AnalyzeRequest{
				Mode: domain.ModeEndpoint, BaseURL: "http://x", EndpointPath: "/users", Method: "DELETE",
			},
			wantErr: true,
		},
		{
			name: "endpoint accepts post",
			req: domain.AnalyzeRequest{
				Mode: domain.ModeEndpoint, BaseURL: "http://x", EndpointPath: "/users", Method: "post",
			},
		},
		{
			name:    "json_sample requires sample",
			req:     domain.AnalyzeRequest{Mode: domain.ModeJSONSample},
			wantErr: true,
		},
		{
			name:    "wsdl requires content",
			req:     domain.AnalyzeRequest{Mode: domain.ModeWSDL},
			wantErr: true,
		},
		{
			name:    "soap_endpoint requires action",
			req:     domain.AnalyzeRequest{Mode: domain.ModeSOAPEndpoint, BaseURL: "http://x"},
			wantErr: true,
		},
		{
			name: "soap_xml_sample requires operation name",
			req: domain.AnalyzeRequest{
				Mode: domain.ModeSOAPXMLSample, SampleXML: "<a/>",
			},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			req:     domain.AnalyzeRequest{Mode: "grpc"},
			wantErr: true,
		},
		{
			name:    "empty mode",
			req:     domain.AnalyzeRequest{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, domain.ErrInvalidInput, domain.KindOf(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUnknownModeListsSupportedModes(t *testing.T) {
	req := domain.AnalyzeRequest{Mode: "grpc"}
	err := req.Validate()
	require.Error(t, err)
	for _, m := range domain.Modes {
		assert.Contains(t, err.Error(), string(m))
	}
}

func TestRawTextUnmarshal(t *testing.T) {
	var req domain.AnalyzeRequest

	// Spec passed as a JSON string, possibly holding YAML.
	err := json.Unmarshal([]byte(`{"mode":"openapi","specJson":"openapi: 3.0.0"}`), &req)
	require.NoError(t, err)
	assert.Equal(t, "openapi: 3.0.0", string(req.SpecJSON))

	// Spec passed as an embedded JSON document.
	err = json.Unmarshal([]byte(`{"mode":"openapi","specJson":{"openapi":"3.0.0"}}`), &req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"openapi":"3.0.0"}`, string(req.SpecJSON))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, domain.ErrTimeout, domain.KindOf(domain.NewError(domain.ErrTimeout, "slow")))
	assert.Equal(t, domain.ErrInternal, domain.KindOf(assert.AnError))

	wrapped := domain.WrapError(domain.ErrUnreachable, assert.AnError, "down")
	assert.Equal(t, domain.ErrUnreachable, domain.KindOf(wrapped))
	assert.ErrorIs(t, wrapped, assert.AnError)
}
