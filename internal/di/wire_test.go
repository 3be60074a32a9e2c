package di

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencoaf/caseledger/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		DataDir:       t.TempDir(),
		RetentionDays: 365,
		GroqModel:     "llama-3.3-70b-versatile",
		GroqBaseURL:   "https://api.groq.com/openai/v1",
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.CloseDatabases()

	// databases
	require.NotNil(t, container.CasesDB)
	require.NotNil(t, container.ConfigDB)
	require.NotNil(t, container.LedgerDB)
	require.NotNil(t, container.AnalysisDB)
	require.NotNil(t, container.CacheDB)

	// repositories
	assert.NotNil(t, container.SettingsRepo)
	assert.NotNil(t, container.CaseRepo)
	assert.NotNil(t, container.UploadRepo)
	assert.NotNil(t, container.LedgerRepo)
	assert.NotNil(t, container.CacheRepo)
	assert.NotNil(t, container.AnalysisRepo)

	// services and jobs
	assert.NotNil(t, container.UploadService)
	assert.NotNil(t, container.AnalyticsService)
	assert.NotNil(t, container.RedFlagService)
	assert.NotNil(t, container.ReportService)
	assert.NotNil(t, container.CleanupJob)

	// no GROQ key, no storage credentials
	assert.NotNil(t, container.GroqClient)
	assert.False(t, container.GroqClient.Configured())
	assert.Nil(t, container.ObjectStore)
}

func TestWireIsRepeatable(t *testing.T) {
	cfg := testConfig(t)

	first, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	first.CloseDatabases()

	// second startup against the same data directory must not trip on
	// already-applied schemas
	second, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	second.CloseDatabases()
}
