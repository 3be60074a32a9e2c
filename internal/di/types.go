// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/opencoaf/caseledger/internal/clients/groq"
	"github.com/opencoaf/caseledger/internal/clients/objstore"
	"github.com/opencoaf/caseledger/internal/database"
	"github.com/opencoaf/caseledger/internal/modules/analytics"
	"github.com/opencoaf/caseledger/internal/modules/cases"
	"github.com/opencoaf/caseledger/internal/modules/cleanup"
	"github.com/opencoaf/caseledger/internal/modules/ledger"
	"github.com/opencoaf/caseledger/internal/modules/redflags"
	"github.com/opencoaf/caseledger/internal/modules/reports"
	"github.com/opencoaf/caseledger/internal/modules/settings"
	"github.com/opencoaf/caseledger/internal/modules/uploads"
)

// Container holds all initialized dependencies: databases, repositories,
// clients, services and jobs. Built once at startup by Wire.
type Container struct {
	// Databases
	CasesDB    *database.DB
	ConfigDB   *database.DB
	LedgerDB   *database.DB
	AnalysisDB *database.DB
	CacheDB    *database.DB

	// Repositories
	SettingsRepo *settings.Repository
	CaseRepo     *cases.Repository
	UploadRepo   *uploads.Repository
	LedgerRepo   *ledger.Repository
	CacheRepo    *analytics.CacheRepository
	AnalysisRepo *redflags.Repository

	// Clients (ObjectStore is nil when storage credentials are absent,
	// GroqClient is always present but may be unconfigured)
	GroqClient  *groq.Client
	ObjectStore *objstore.Client

	// Services
	UploadService    *uploads.Service
	AnalyticsService *analytics.Service
	RedFlagService   *redflags.Service
	ReportService    *reports.Service

	// Jobs
	CleanupJob *cleanup.Job
}

// CloseDatabases closes every open database connection. Safe to call with
// partially initialized containers (wiring error paths).
func (c *Container) CloseDatabases() {
	for _, db := range []*database.DB{c.CasesDB, c.ConfigDB, c.LedgerDB, c.AnalysisDB, c.CacheDB} {
		if db != nil {
			db.Close()
		}
	}
}
