package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parchment-labs/passage-cli/internal/core/domain"
	"github.com/parchment-labs/passage-cli/internal/core/ports/driving"
)

// MockQueryService implements driving.QueryService for testing.
type MockQueryService struct {
	QueryFunc func(
		ctx context.Context, query string, opts domain.QueryOptions,
	) ([]domain.SearchResult, error)
	AskFunc func(
		ctx context.Context, query string, opts domain.QueryOptions,
	) (*domain.Answer, error)
}

func (m *MockQueryService) Query(
	ctx context.Context, query string, opts domain.QueryOptions,
) ([]domain.SearchResult, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query, opts)
	}
	return nil, nil
}

func (m *MockQueryService) Ask(
	ctx context.Context, query string, opts domain.QueryOptions,
) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, query, opts)
	}
	return nil, nil
}

// MockDocumentService implements driving.DocumentService for testing.
type MockDocumentService struct {
	ListFunc       func(ctx context.Context) ([]domain.Document, error)
	GetFunc        func(ctx context.Context, documentID string) (*domain.Document, error)
	GetContentFunc func(ctx context.Context, documentID string) (string, error)
	GetDetailsFunc func(ctx context.Context, documentID string) (*driving.DocumentDetails, error)
	DeleteFunc     func(ctx context.Context, documentID string) error
}

func (m *MockDocumentService) List(ctx context.Context) ([]domain.Document, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockDocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, documentID)
	}
	return nil, nil
}

func (m *MockDocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	if m.GetContentFunc != nil {
		return m.GetContentFunc(ctx, documentID)
	}
	return "", nil
}

func (m *MockDocumentService) GetDetails(ctx context.Context, documentID string) (*driving.DocumentDetails, error) {
	if m.GetDetailsFunc != nil {
		return m.GetDetailsFunc(ctx, documentID)
	}
	return nil, nil
}

func (m *MockDocumentService) Delete(ctx context.Context, documentID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, documentID)
	}
	return nil
}

// MockIngestOrchestrator implements driving.IngestOrchestrator for testing.
type MockIngestOrchestrator struct {
	IngestTextFunc func(ctx context.Context, documentID, text string) (*driving.IngestReport, error)
	IngestFileFunc func(ctx context.Context, path string) (*driving.IngestReport, error)
}

func (m *MockIngestOrchestrator) IngestText(
	ctx context.Context, documentID, text string,
) (*driving.IngestReport, error) {
	if m.IngestTextFunc != nil {
		return m.IngestTextFunc(ctx, documentID, text)
	}
	return nil, nil
}

func (m *MockIngestOrchestrator) IngestRaw(ctx context.Context, raw domain.RawDocument) (*driving.IngestReport, error) {
	return nil, nil
}

func (m *MockIngestOrchestrator) IngestFile(ctx context.Context, path string) (*driving.IngestReport, error) {
	if m.IngestFileFunc != nil {
		return m.IngestFileFunc(ctx, path)
	}
	return nil, nil
}

func (m *MockIngestOrchestrator) Reindex(ctx context.Context) (int, error) {
	return 0, nil
}

func (m *MockIngestOrchestrator) Status(ctx context.Context, documentID string) (*driving.IngestStatus, error) {
	return nil, nil
}

// MockSettingsService implements driving.SettingsService for testing.
type MockSettingsService struct {
	GetFunc                  func() (*domain.AppSettings, error)
	SetQueryModeFunc         func(mode domain.QueryMode) error
	SetEmbeddingProviderFunc func(provider domain.AIProvider, model, apiKey string) error
	SetResponderProviderFunc func(provider domain.AIProvider, model, apiKey string) error
	ValidateFunc             func() error
}

func (m *MockSettingsService) Get() (*domain.AppSettings, error) {
	if m.GetFunc != nil {
		return m.GetFunc()
	}
	return nil, nil
}

func (m *MockSettingsService) Save(settings *domain.AppSettings) error {
	return nil
}

func (m *MockSettingsService) SetQueryMode(mode domain.QueryMode) error {
	if m.SetQueryModeFunc != nil {
		return m.SetQueryModeFunc(mode)
	}
	return nil
}

func (m *MockSettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.SetEmbeddingProviderFunc != nil {
		return m.SetEmbeddingProviderFunc(provider, model, apiKey)
	}
	return nil
}

func (m *MockSettingsService) SetResponderProvider(provider domain.AIProvider, model, apiKey string) error {
	if m.SetResponderProviderFunc != nil {
		return m.SetResponderProviderFunc(provider, model, apiKey)
	}
	return nil
}

func (m *MockSettingsService) SetIndexBackend(backend domain.IndexBackend) error {
	return nil
}

func (m *MockSettingsService) SetChunking(chunkSize, overlap int) error {
	return nil
}

func (m *MockSettingsService) Validate() error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc()
	}
	return nil
}

func (m *MockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *MockSettingsService) ValidateEmbeddingConfig() error {
	return nil
}

func (m *MockSettingsService) ValidateResponderConfig() error {
	return nil
}

func TestNewPorts(t *testing.T) {
	query := &MockQueryService{}
	document := &MockDocumentService{}
	ingestSvc := &MockIngestOrchestrator{}
	settingsSvc := &MockSettingsService{}

	ports := NewPorts(query, document, ingestSvc, settingsSvc)

	require.NotNil(t, ports)
	assert.Equal(t, query, ports.Query)
	assert.Equal(t, document, ports.Document)
	assert.Equal(t, ingestSvc, ports.Ingest)
	assert.Equal(t, settingsSvc, ports.Settings)
}

func TestPorts_Validate_AllSet(t *testing.T) {
	ports := &Ports{
		Query:    &MockQueryService{},
		Document: &MockDocumentService{},
		Ingest:   &MockIngestOrchestrator{},
		Settings: &MockSettingsService{},
	}

	err := ports.Validate()

	assert.NoError(t, err)
}

func TestPorts_Validate_MissingQuery(t *testing.T) {
	ports := &Ports{
		Query:    nil,
		Document: &MockDocumentService{},
	}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingQueryService)
}

func TestPorts_Validate_MissingDocument(t *testing.T) {
	ports := &Ports{
		Query:    &MockQueryService{},
		Document: nil,
	}

	err := ports.Validate()

	assert.ErrorIs(t, err, ErrMissingDocumentService)
}

func TestPorts_Validate_OptionalPortsNil(t *testing.T) {
	// Ingest and Settings are optional - views degrade gracefully
	ports := &Ports{
		Query:    &MockQueryService{},
		Document: &MockDocumentService{},
		Ingest:   nil,
		Settings: nil,
	}

	err := ports.Validate()

	assert.NoError(t, err)
}
