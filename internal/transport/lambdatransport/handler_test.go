package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awmpietro/golang-case-classification/internal/app"
	"github.com/awmpietro/golang-case-classification/internal/i18n"
	"github.com/awmpietro/golang-case-classification/internal/ruleset"
	"github.com/awmpietro/golang-case-classification/internal/ruleset/cache"
)

type svcStub struct {
	classifyFn func(req app.ClassifyRequest) (*app.ClassificationResult, error)
	describeFn func(req app.DescribeRequest) (*app.RulesDescription, error)
}

func (s *svcStub) Classify(req app.ClassifyRequest) (*app.ClassificationResult, error) {
	return s.classifyFn(req)
}

func (s *svcStub) Describe(req app.DescribeRequest) (*app.RulesDescription, error) {
	return s.describeFn(req)
}

func (s *svcStub) Diseases() []string { return []string{"MEASLES"} }

func okStub() *svcStub {
	return &svcStub{
		classifyFn: func(req app.ClassifyRequest) (*app.ClassificationResult, error) {
			return &app.ClassificationResult{EvaluationID: "ev", Disease: req.Case.Disease, Classification: app.Suspect}, nil
		},
		describeFn: func(req app.DescribeRequest) (*app.RulesDescription, error) {
			return &app.RulesDescription{Disease: req.Disease, Locale: req.Locale}, nil
		},
	}
}

func decode(t *testing.T, resp events.APIGatewayV2HTTPResponse) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	return out
}

func TestHandler_Classify_InvalidJSON(t *testing.T) {
	resp, err := NewHandler(okStub()).Handle(context.Background(), events.APIGatewayV2HTTPRequest{RawPath: "/classify", Body: "{"})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHandler_Classify_InvalidBase64(t *testing.T) {
	resp, err := NewHandler(okStub()).Handle(context.Background(), events.APIGatewayV2HTTPRequest{Body: "%%%", IsBase64Encoded: true})
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "invalid body", decode(t, resp)["error"])
}

func TestHandler_Classify_Base64Body(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte(`{"case":{"disease":"MEASLES"}}`))
	resp, err := NewHandler(okStub()).Handle(context.Background(), events.APIGatewayV2HTTPRequest{RawPath: "/prod/classify", Body: body, IsBase64Encoded: true})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["content-type"])

	out := decode(t, resp)
	assert.Equal(t, "SUSPECT", out["classification"])
	assert.Equal(t, "MEASLES", out["disease"])
}

func TestHandler_Classify_UnknownDiseaseIs404(t *testing.T) {
	svc := okStub()
	svc.classifyFn = func(req app.ClassifyRequest) (*app.ClassificationResult, error) {
		return nil, fmt.Errorf("%w: %q", ruleset.ErrUnknownDisease, "PLAGUE")
	}
	resp, err := NewHandler(svc).Handle(context.Background(), events.APIGatewayV2HTTPRequest{RawPath: "/classify", Body: `{}`})
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestHandler_Describe_UsesAcceptLanguageHeader(t *testing.T) {
	req := events.APIGatewayV2HTTPRequest{
		RequestContext: events.APIGatewayV2HTTPRequestContext{HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{Path: "/describe"}},
		Headers:        map[string]string{"Accept-Language": "fr"},
		Body:           `{"disease":"MEASLES"}`,
	}
	resp, err := NewHandler(okStub()).Handle(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "fr", decode(t, resp)["locale"])
}

func realService(t *testing.T) *app.Service {
	t.Helper()
	reg, err := ruleset.Builtin()
	require.NoError(t, err)
	bundle, err := i18n.Default("en")
	require.NoError(t, err)
	return app.NewService(reg, ruleset.NewCompiler(), cache.NewInMemory(4), bundle)
}

func TestHandler_Describe_NegotiatesBrowserAcceptLanguage(t *testing.T) {
	resp, err := NewHandler(realService(t)).Handle(context.Background(), events.APIGatewayV2HTTPRequest{
		RawPath: "/describe",
		Headers: map[string]string{"Accept-Language": "fr-CH,fr;q=0.9,de;q=0.8"},
		Body:    `{"disease":"MEASLES"}`,
	})
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var out app.RulesDescription
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	assert.Equal(t, "fr", out.Locale)
	require.NotEmpty(t, out.Tiers)
	assert.Equal(t, "suspect", string(out.Tiers[0].Tier))
}

func TestHandler_Diseases(t *testing.T) {
	resp, err := NewHandler(okStub()).Handle(context.Background(), events.APIGatewayV2HTTPRequest{RawPath: "/diseases"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"diseases":["MEASLES"]}`, resp.Body)
}
