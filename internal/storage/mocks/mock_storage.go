package mocks

import (
	"context"

	"docgateway/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Write(ctx context.Context, p storage.WriteParams) (storage.WriteResult, error) {
	args := m.Called(ctx, p)
	if f, ok := args.Get(0).(func(context.Context, storage.WriteParams) storage.WriteResult); ok {
		return f(ctx, p), args.Error(1)
	}
	return args.Get(0).(storage.WriteResult), args.Error(1)
}

func (m *MockStore) Search(ctx context.Context, q storage.SearchQuery) ([]storage.Record, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Record), args.Error(1)
}
