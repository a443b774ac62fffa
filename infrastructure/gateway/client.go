// Package gateway is the HTTP client of the evidence map API. Every call goes
// through a circuit breaker; 5xx answers and transport errors count as
// failures.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	pkgerrors "github.com/ShabiDHM/advocatus-sub001/pkg/errors"
)

const (
	evidenceMapPath = "/api/v1/cases/{caseID}/evidence-map"
	reportPath      = "/api/v1/cases/{caseID}/evidence-map/report"
	jobStatusPath   = "/api/v1/drafting/jobs/{jobID}/status"

	serviceName = "evidence-map-api"
)

// Config configures the gateway client
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Breaker BreakerConfig
}

// Client implements ports.PersistenceGateway and ports.JobStatusFetcher
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

var (
	_ ports.PersistenceGateway = (*Client)(nil)
	_ ports.JobStatusFetcher   = (*Client)(nil)
)

// New creates a new gateway client
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Breaker.Name == "" {
		cfg.Breaker = DefaultBreakerConfig(serviceName)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Client{
		http:    client,
		breaker: newBreaker(cfg.Breaker, logger),
		logger:  logger,
	}
}

// LoadGraph fetches the stored map of a case
func (c *Client) LoadGraph(ctx context.Context, caseID valueobjects.CaseID) (aggregates.Document, error) {
	var doc aggregates.Document
	_, err := c.do(ctx, "load graph", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("caseID", caseID.String()).
			SetResult(&doc).
			Get(evidenceMapPath)
	})
	if err != nil {
		return aggregates.Document{}, err
	}
	return doc, nil
}

// SaveGraph replaces the stored map of a case
func (c *Client) SaveGraph(ctx context.Context, caseID valueobjects.CaseID, doc aggregates.Document) error {
	_, err := c.do(ctx, "save graph", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("caseID", caseID.String()).
			SetBody(doc).
			Put(evidenceMapPath)
	})
	return err
}

type reportBody struct {
	Nodes []entities.Node `json:"nodes"`
	Edges []entities.Edge `json:"edges"`
}

// ExportReport asks the server to render the PDF report of a graph
func (c *Client) ExportReport(ctx context.Context, caseID valueobjects.CaseID, nodes []entities.Node, edges []entities.Edge) ([]byte, error) {
	resp, err := c.do(ctx, "export report", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("caseID", caseID.String()).
			SetHeader("Accept", "application/pdf").
			SetBody(reportBody{Nodes: nodes, Edges: edges}).
			Post(reportPath)
	})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// FetchJobStatus returns the status of a drafting job
func (c *Client) FetchJobStatus(ctx context.Context, jobID string) (ports.JobStatus, error) {
	var status ports.JobStatus
	_, err := c.do(ctx, "fetch job status", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("jobID", jobID).
			SetResult(&status).
			Get(jobStatusPath)
	})
	if err != nil {
		return ports.JobStatus{}, err
	}
	if status.JobID == "" {
		status.JobID = jobID
	}
	return status, nil
}

// do runs one request through the breaker and maps failures to AppErrors
func (c *Client) do(ctx context.Context, op string, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	var apiErr pkgerrors.ErrorResponse
	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := send(c.http.R().SetContext(ctx).SetError(&apiErr))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return resp, fmt.Errorf("%s: server answered %s", op, resp.Status())
		}
		return resp, nil
	})

	var resp *resty.Response
	if out != nil {
		resp = out.(*resty.Response)
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		c.logger.Warn("Request rejected by circuit breaker", zap.String("operation", op))
		return nil, pkgerrors.NewUnavailableError(serviceName).WithCause(err)
	case err != nil && resp == nil:
		c.logger.Error("Request failed", zap.String("operation", op), zap.Error(err))
		return nil, pkgerrors.NewExternalError(serviceName, err)
	case resp.IsError():
		return nil, responseError(resp, &apiErr)
	}

	c.logger.Debug("Request completed",
		zap.String("operation", op),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", resp.Time()))
	return resp, nil
}

// responseError rebuilds the server's error envelope
func responseError(resp *resty.Response, body *pkgerrors.ErrorResponse) error {
	appErr := &pkgerrors.AppError{
		Type:       pkgerrors.ErrorType(body.Type),
		Message:    body.Message,
		Code:       body.Code,
		Details:    body.Details,
		HTTPStatus: resp.StatusCode(),
	}
	if appErr.Type == "" {
		appErr.Type = pkgerrors.ErrorTypeExternal
	}
	if appErr.Message == "" {
		appErr.Message = fmt.Sprintf("server answered %s", resp.Status())
	}
	return appErr
}
