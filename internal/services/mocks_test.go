package services_test

import (
	"context"
	"net/http"

	"github.com/botivate/sheetsync/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockHTTPClient is a mock http.RoundTripper
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) RoundTrip(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// MockTableRepository is a mock implementation of repository.TableRepository
type MockTableRepository struct {
	mock.Mock
}

func (m *MockTableRepository) ResetTable(ctx context.Context, tableName, createStatement string) (string, error) {
	args := m.Called(ctx, tableName, createStatement)
	return args.String(0), args.Error(1)
}

// MockNotifier is a mock implementation of NotifierServiceInterface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyChange(ctx context.Context) models.NotificationResult {
	args := m.Called(ctx)
	return args.Get(0).(models.NotificationResult)
}

// MockExtractor is a mock implementation of ExtractServiceInterface
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context) (*models.SyncDocument, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncDocument), args.Error(1)
}

// MockObjectStore is a mock implementation of ObjectStore
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	args := m.Called(ctx, key, contentType, body)
	return args.String(0), args.Error(1)
}
