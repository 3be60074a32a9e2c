package di

import (
	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
	"github.com/opencoaf/caseledger/internal/modules/redflags"
	"github.com/opencoaf/caseledger/internal/modules/settings"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

// InitializeRepositories creates all repositories with their database
// connections. Requires InitializeDatabases to have run.
func InitializeRepositories(container *Container, log zerolog.Logger) {
	container.SettingsRepo = settings.NewRepository(container.ConfigDB.Conn(), log)
	container.CaseRepo = cases.NewRepository(container.CasesDB.Conn(), log)
	container.UploadRepo = uploads.NewRepository(container.CasesDB.Conn(), log)
	container.LedgerRepo = ledger.NewRepository(container.LedgerDB.Conn(), log)
	container.CacheRepo = analytics.NewCacheRepository(container.CacheDB.Conn(), log)
	container.AnalysisRepo = redflags.NewRepository(container.AnalysisDB.Conn(), log)

	log.Info().Msg("All repositories initialized")
}
