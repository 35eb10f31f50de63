package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/golang-case-classification/internal/app"
	"github.com/awmpietro/golang-case-classification/internal/transport/classifydto"
)

type Handler struct {
	svc app.ClassificationService
}

func NewHandler(svc app.ClassificationService) *Handler {
	return &Handler{svc: svc}
}

// Handle routes API Gateway requests by path. A request without a known path
// suffix is treated as /classify.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}

	switch {
	case strings.HasSuffix(path, "/diseases"):
		return jsonResp(http.StatusOK, classifydto.DiseasesResponse{Diseases: h.svc.Diseases()}), nil
	case strings.HasSuffix(path, "/describe"):
		return h.Describe(ctx, req)
	default:
		return h.Classify(ctx, req)
	}
}

func (h *Handler) Classify(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, classifydto.ErrorBody("invalid body", err)), nil
	}

	var in classifydto.ClassifyRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, classifydto.ErrorBody("invalid json", err)), nil
	}

	res, err := h.svc.Classify(in.ToApp())
	if err != nil {
		return jsonResp(classifydto.Status(err), classifydto.ErrorBody("classification failed", err)), nil
	}
	return jsonResp(http.StatusOK, res), nil
}

func (h *Handler) Describe(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, classifydto.ErrorBody("invalid body", err)), nil
	}

	var in classifydto.DescribeRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, classifydto.ErrorBody("invalid json", err)), nil
	}
	if in.Locale == "" {
		in.Locale = header(req.Headers, "accept-language")
	}

	res, err := h.svc.Describe(in.ToApp())
	if err != nil {
		return jsonResp(classifydto.Status(err), classifydto.ErrorBody("describe failed", err)), nil
	}
	return jsonResp(http.StatusOK, res), nil
}

func header(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    map[string]string{"content-type": "application/json"},
			Body:       `{"error":"failed to encode response"}`,
		}
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
