// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/phishguard/api/schemas"
	"github.com/xkilldash9x/phishguard/internal/config"
	"github.com/xkilldash9x/phishguard/internal/mocks"
	"github.com/xkilldash9x/phishguard/internal/records"
	"github.com/xkilldash9x/phishguard/internal/service"
)

// executeCommand runs a fresh command tree and captures its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// createTempConfig writes content to a YAML file that is removed with the test.
func createTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// clearEnv unsets the variables a developer shell may carry into the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"PHISHGUARD_DATABASE_URL", "DATABASE_URL", "PHISHGUARD_API_KEY", "GEMINI_API_KEY", "API_KEY", "PHISHGUARD_SEED_LIMIT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// stubSeedSource makes the query command read from src instead of Postgres.
func stubSeedSource(t *testing.T, src records.SeedSource) {
	t.Helper()
	orig := openSeedSource
	t.Cleanup(func() { openSeedSource = orig })
	openSeedSource = func(context.Context, config.DatabaseConfig, *zap.Logger) (records.SeedSource, func(), error) {
		return src, func() {}, nil
	}
}

// stubComponents builds the real service graph around llm.
func stubComponents(t *testing.T, llm *mocks.MockLLMClient) {
	t.Helper()
	orig := newComponents
	t.Cleanup(func() { newComponents = orig })
	newComponents = func(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*service.Components, error) {
		return service.NewComponents(ctx, cfg, logger, service.WithLLMClient(llm))
	}
}

func seedRecords() []schemas.ThreatRecord {
	rec := func(id, url string, phishing bool, score float64, rules ...string) schemas.ThreatRecord {
		r := schemas.ThreatRecord{ID: id, URL: url, IsPhishing: phishing, ConfidenceScore: score, AnalysisDetails: []schemas.Finding{}}
		if len(rules) > 0 {
			r.AnalysisDetails = []schemas.Finding{{Module: "Heuristic Analysis", Reason: "x", TriggeredRules: rules}}
		}
		return r
	}
	return []schemas.ThreatRecord{
		rec("3", "http://login.microsft-online.com/auth", true, 0.98, "Typosquatting"),
		rec("2", "https://www.google.com", false, 0.01),
		rec("1", "http://bit.ly/3xYz123", true, 0.75, "URL Shortener"),
	}
}
