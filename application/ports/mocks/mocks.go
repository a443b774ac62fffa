// Package mocks provides testify mocks of the application ports.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ShabiDHM/advocatus-sub001/application/ports"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/aggregates"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/entities"
	"github.com/ShabiDHM/advocatus-sub001/domain/core/valueobjects"
	"github.com/ShabiDHM/advocatus-sub001/domain/events"
	"github.com/ShabiDHM/advocatus-sub001/domain/services"
)

type MockEvidenceMapRepository struct {
	mock.Mock
}

func (m *MockEvidenceMapRepository) Load(ctx context.Context, caseID valueobjects.CaseID) (*aggregates.EvidenceMap, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.EvidenceMap), args.Error(1)
}

func (m *MockEvidenceMapRepository) Save(ctx context.Context, em *aggregates.EvidenceMap) error {
	args := m.Called(ctx, em)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (interface{}, bool) {
	args := m.Called(ctx, key)
	return args.Get(0), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockReportRenderer struct {
	mock.Mock
}

func (m *MockReportRenderer) Render(ctx context.Context, caseID valueobjects.CaseID, nodes []entities.Node, edges []entities.Edge) ([]byte, error) {
	args := m.Called(ctx, caseID, nodes, edges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockRasterizer struct {
	mock.Mock
}

func (m *MockRasterizer) Rasterize(ctx context.Context, view services.DisplayedView, rect services.Rect) ([]byte, error) {
	args := m.Called(ctx, view, rect)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockPersistenceGateway struct {
	mock.Mock
}

func (m *MockPersistenceGateway) LoadGraph(ctx context.Context, caseID valueobjects.CaseID) (aggregates.Document, error) {
	args := m.Called(ctx, caseID)
	return args.Get(0).(aggregates.Document), args.Error(1)
}

func (m *MockPersistenceGateway) SaveGraph(ctx context.Context, caseID valueobjects.CaseID, doc aggregates.Document) error {
	args := m.Called(ctx, caseID, doc)
	return args.Error(0)
}

func (m *MockPersistenceGateway) ExportReport(ctx context.Context, caseID valueobjects.CaseID, nodes []entities.Node, edges []entities.Edge) ([]byte, error) {
	args := m.Called(ctx, caseID, nodes, edges)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockJobStatusFetcher struct {
	mock.Mock
}

func (m *MockJobStatusFetcher) FetchJobStatus(ctx context.Context, jobID string) (ports.JobStatus, error) {
	args := m.Called(ctx, jobID)
	return args.Get(0).(ports.JobStatus), args.Error(1)
}

var (
	_ ports.EvidenceMapRepository = (*MockEvidenceMapRepository)(nil)
	_ ports.Cache                 = (*MockCache)(nil)
	_ ports.EventPublisher        = (*MockEventPublisher)(nil)
	_ ports.ReportRenderer        = (*MockReportRenderer)(nil)
	_ ports.Rasterizer            = (*MockRasterizer)(nil)
	_ ports.PersistenceGateway    = (*MockPersistenceGateway)(nil)
	_ ports.JobStatusFetcher      = (*MockJobStatusFetcher)(nil)
)
