package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"product-schema-service/internal/catalog"
	"product-schema-service/internal/events"
	"product-schema-service/internal/identifiers"
	"product-schema-service/internal/repository"
)

const testTenant = "tenant-1"

// MockSnapshotLoader is a mock implementation of SnapshotLoader
type MockSnapshotLoader struct {
	mock.Mock
}

func (m *MockSnapshotLoader) LoadSnapshot(ctx context.Context, tenantID string, productID uuid.UUID, opts repository.SnapshotOptions) (*catalog.Snapshot, error) {
	args := m.Called(ctx, tenantID, productID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Snapshot), args.Error(1)
}

// MockCatalogLookup is a mock implementation of CatalogLookup
type MockCatalogLookup struct {
	mock.Mock
}

func (m *MockCatalogLookup) FindByIDOrSKU(ctx context.Context, tenantID, id, sku string) (*repository.CatalogEntry, error) {
	args := m.Called(ctx, tenantID, id, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.CatalogEntry), args.Error(1)
}

func (m *MockCatalogLookup) ListForExport(ctx context.Context, tenantID string) ([]repository.CatalogEntry, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CatalogEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of IdentifierEventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishIdentifiersImported(ctx context.Context, tenantID, actorID string, change events.IdentifierChange) error {
	args := m.Called(ctx, tenantID, actorID, change)
	return args.Error(0)
}

// memoryStore keeps identifier sets keyed by "entityID|scope"
type memoryStore struct {
	mu   sync.Mutex
	sets map[string]identifiers.Set
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sets: make(map[string]identifiers.Set)}
}

func (s *memoryStore) GetIdentifierSet(_ context.Context, entityID string, scope identifiers.Scope) (identifiers.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[entityID+"|"+string(scope)].Normalize(), nil
}

func (s *memoryStore) SetIdentifierSet(_ context.Context, entityID string, scope identifiers.Scope, set identifiers.Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[entityID+"|"+string(scope)] = set.Normalize()
	return nil
}

func (s *memoryStore) put(entityID string, scope identifiers.Scope, set identifiers.Set) {
	s.sets[entityID+"|"+string(scope)] = set.Normalize()
}

// tenantStores hands out one store for the test tenant only
type tenantStores struct {
	store identifiers.Store
}

func (t tenantStores) ForTenant(tenantID string) identifiers.Store {
	if tenantID != testTenant {
		return newMemoryStore()
	}
	return t.store
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestRouter returns a router that scopes every request to testTenant
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("tenant_id", testTenant)
		c.Set("user_id", "user-1")
		c.Next()
	})
	return router
}

// multipartRequest builds a multipart upload of content as filename
func multipartRequest(t *testing.T, url, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, url, &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
