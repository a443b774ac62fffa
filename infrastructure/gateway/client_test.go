package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

const baseURL = "http://api.test"

func newTestClient(t *testing.T, breaker BreakerConfig) *Client {
	t.Helper()
	c := New(Config{BaseURL: baseURL, Token: "secret", Timeout: time.Second, Breaker: breaker}, zap.NewNop())
	httpmock.ActivateNonDefault(c.http.GetClient())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func TestClient_LoadGraph(t *testing.T) {
	c := newTestClient(t, BreakerConfig{})

	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/cases/case-1/evidence-map",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
			resp := httpmock.NewStringResponse(http.StatusOK, `{
				"nodes": [{"id": "C1", "type": "claimNode", "position": {"x": 1, "y": 2}, "data": {"label": "Breach", "content": "", "isProven": true}}],
				"edges": [{"id": "eE1-C1", "source": "E1", "target": "C1", "type": "supports", "data": {}}],
				"viewport": {"x": 0, "y": 0, "zoom": 1}
			}`)
			resp.Header.Set("Content-Type", "application/json")
			return resp, nil
		})

	doc, err := c.LoadGraph(context.Background(), "case-1")
	require.NoError(t, err)
	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, "Breach", doc.Nodes[0].Label())
	attrs, ok := doc.Nodes[0].Claim()
	require.True(t, ok)
	assert.True(t, attrs.IsProven)
	require.Len(t, doc.Edges, 1)
	assert.Equal(t, valueobjects.EdgeSupports, doc.Edges[0].Type())
	assert.Equal(t, 1.0, doc.Viewport.Zoom)
}

func TestClient_SaveGraph(t *testing.T) {
	c := newTestClient(t, BreakerConfig{})

	n, err := entities.NewFactNode("F1", valueobjects.Position{X: 5}, "Meeting", "")
	require.NoError(t, err)

	var got map[string]json.RawMessage
	httpmock.RegisterResponder(http.MethodPut, baseURL+"/api/v1/cases/case-1/evidence-map",
		func(req *http.Request) (*http.Response, error) {
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewStringResponse(http.StatusNoContent, ""), nil
		})

	err = c.SaveGraph(context.Background(), "case-1", aggregates.Document{Nodes: []entities.Node{n}, Viewport: valueobjects.DefaultViewport()})
	require.NoError(t, err)
	assert.Contains(t, string(got["nodes"]), `"factNode"`)
	assert.Contains(t, got, "viewport")
}

func TestClient_ExportReport(t *testing.T) {
	c := newTestClient(t, BreakerConfig{})

	httpmock.RegisterResponder(http.MethodPost, baseURL+"/api/v1/cases/case-1/evidence-map/report",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/pdf", req.Header.Get("Accept"))
			return httpmock.NewBytesResponse(http.StatusOK, []byte("%PDF-1.3 fake")), nil
		})

	out, err := c.ExportReport(context.Background(), "case-1", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3 fake", string(out))
}

func TestClient_ErrorEnvelope(t *testing.T) {
	c := newTestClient(t, BreakerConfig{})

	resp, err := httpmock.NewJsonResponder(http.StatusBadRequest, pkgerrors.ErrorResponse{
		Error: true, Type: "VALIDATION", Message: "duplicate node id", Code: "DUPLICATE_NODE",
	})
	require.NoError(t, err)
	httpmock.RegisterResponder(http.MethodPut, baseURL+"/api/v1/cases/case-1/evidence-map", resp)

	err = c.SaveGraph(context.Background(), "case-1", aggregates.Document{})
	require.Error(t, err)
	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "DUPLICATE_NODE", appErr.Code)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestClient_FetchJobStatus(t *testing.T) {
	c := newTestClient(t, BreakerConfig{})

	resp, err := httpmock.NewJsonResponder(http.StatusOK, map[string]string{"status": "SUCCESS", "result": "draft text"})
	require.NoError(t, err)
	httpmock.RegisterResponder(http.MethodGet, baseURL+"/api/v1/drafting/jobs/job-7/status", resp)

	status, err := c.FetchJobStatus(context.Background(), "job-7")
	require.NoError(t, err)
	assert.Equal(t, "job-7", status.JobID)
	assert.Equal(t, "SUCCESS", status.Status)
	assert.Equal(t, "draft text", status.Result)
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	c := newTestClient(t, BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      2,
	})

	url := baseURL + "/api/v1/drafting/jobs/job-1/status"
	httpmock.RegisterResponder(http.MethodGet, url, httpmock.NewStringResponder(http.StatusBadGateway, "upstream down"))

	for i := 0; i < 2; i++ {
		_, err := c.FetchJobStatus(context.Background(), "job-1")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadGateway, pkgerrors.GetAppError(err).HTTPStatus)
	}

	_, err := c.FetchJobStatus(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, 2, httpmock.GetCallCountInfo()["GET "+url])
}
