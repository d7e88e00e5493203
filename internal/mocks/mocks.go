// File: internal/mocks/mocks.go
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Database() config.DatabaseConfig {
	args := m.Called()
	return args.Get(0).(config.DatabaseConfig)
}

func (m *MockConfig) Oracle() config.LLMModelConfig {
	args := m.Called()
	return args.Get(0).(config.LLMModelConfig)
}

func (m *MockConfig) Seed() config.SeedConfig {
	args := m.Called()
	return args.Get(0).(config.SeedConfig)
}

func (m *MockConfig) Server() config.ServerConfig {
	args := m.Called()
	return args.Get(0).(config.ServerConfig)
}

func (m *MockConfig) Explorer() config.ExplorerConfig {
	args := m.Called()
	return args.Get(0).(config.ExplorerConfig)
}

// --- Setters ---

func (m *MockConfig) SetOracleModel(model string) { m.Called(model) }
func (m *MockConfig) SetSeedEnabled(b bool)       { m.Called(b) }
func (m *MockConfig) SetServerAddr(addr string)   { m.Called(addr) }

// -- LLM Client Mock --

// MockLLMClient mocks the schemas.LLMClient interface.
type MockLLMClient struct {
	mock.Mock
}

// Generate provides a mock function for LLM calls.
func (m *MockLLMClient) Generate(ctx context.Context, req schemas.GenerationRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// Close is a no-op unless the test registers an expectation for it.
func (m *MockLLMClient) Close() error {
	for _, call := range m.ExpectedCalls {
		if call.Method == "Close" {
			return m.Called().Error(0)
		}
	}
	return nil
}

// -- Seed Source Mock --

// MockSeedSource mocks records.SeedSource.
type MockSeedSource struct {
	mock.Mock
}

func (m *MockSeedSource) FetchSeedRecords(ctx context.Context, limit int) ([]schemas.ThreatRecord, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]schemas.ThreatRecord)
	return recs, args.Error(1)
}

// -- Classifier Mock --

// MockClassifier mocks the single-call classification contract.
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classify(ctx context.Context, url string) (*schemas.ThreatRecord, error) {
	args := m.Called(ctx, url)
	rec, _ := args.Get(0).(*schemas.ThreatRecord)
	return rec, args.Error(1)
}
