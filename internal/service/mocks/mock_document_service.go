package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docgateway/internal/model"
	"docgateway/internal/service"
)

type MockIngestor struct {
	mock.Mock
}

func (m *MockIngestor) Ingest(ctx context.Context, req service.IngestRequest) (*model.StoredDocument, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}

type MockLister struct {
	mock.Mock
}

func (m *MockLister) List(ctx context.Context, maxResults int) ([]model.StoredDocument, error) {
	args := m.Called(ctx, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StoredDocument), args.Error(1)
}

type MockFinder struct {
	mock.Mock
}

func (m *MockFinder) Get(ctx context.Context, id string) (*model.StoredDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredDocument), args.Error(1)
}
