package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/mocks"
)

func TestNewComponents_SeedsFromSource(t *testing.T) {
	logger, logs := newObservedLogger()
	cfg := offlineConfig()
	cfg.SeedCfg.Limit = 2

	src := new(mocks.MockSeedSource)
	src.On("FetchSeedRecords", mock.Anything, 2).Return([]schemas.ThreatRecord{
		*verdict("1", "http://a.example", true),
		*verdict("2", "http://b.example", false),
	}, nil).Once()
	llm := new(mocks.MockLLMClient)

	c, err := NewComponents(context.Background(), cfg, logger, WithLLMClient(llm), WithSeedSource(src))
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	assert.Equal(t, 2, c.History.Len())
	assert.Same(t, llm, c.LLM)
	assert.NotNil(t, c.Analyzer)
	assert.Nil(t, c.DBPool)
	assert.Equal(t, 1, logs.FilterMessage("All components initialized successfully.").Len())
	src.AssertExpectations(t)
}

func TestNewComponents_SeedFailureStartsEmpty(t *testing.T) {
	logger, logs := newObservedLogger()
	src := new(mocks.MockSeedSource)
	src.On("FetchSeedRecords", mock.Anything, 100).Return(nil, errors.New("timeout")).Once()

	c, err := NewComponents(context.Background(), offlineConfig(), logger,
		WithLLMClient(new(mocks.MockLLMClient)), WithSeedSource(src))
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	assert.Zero(t, c.History.Len())
	assert.Equal(t, 1, logs.FilterMessage("Failed to load the threat history seed; starting empty.").Len())
}

func TestNewComponents_NoDatabaseNoSeed(t *testing.T) {
	logger, logs := newObservedLogger()
	c, err := NewComponents(context.Background(), offlineConfig(), logger, WithLLMClient(new(mocks.MockLLMClient)))
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)

	assert.Zero(t, c.History.Len())
	assert.Equal(t, 1, logs.FilterMessage("No database configured; starting with an empty threat history.").Len())
}

func TestNewComponents_SeedDisabled(t *testing.T) {
	cfg := offlineConfig()
	cfg.SetSeedEnabled(false)
	src := new(mocks.MockSeedSource)

	c, err := NewComponents(context.Background(), cfg, zap.NewNop(),
		WithLLMClient(new(mocks.MockLLMClient)), WithSeedSource(src))
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	src.AssertNotCalled(t, "FetchSeedRecords", mock.Anything, mock.Anything)
}

func TestNewComponents_MissingAPIKey(t *testing.T) {
	cfg := offlineConfig()
	cfg.OracleCfg.APIKey = ""

	_, err := NewComponents(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PHISHGUARD_API_KEY")
}

func TestComponents_ShutdownClosesLLM(t *testing.T) {
	llm := new(mocks.MockLLMClient)
	llm.On("Close").Return(nil).Once()

	c, err := NewComponents(context.Background(), offlineConfig(), zap.NewNop(), WithLLMClient(llm))
	require.NoError(t, err)
	c.Shutdown()
	llm.AssertExpectations(t)
}
