// Package di provides dependency injection for database connections.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/opencoaf/caseledger/internal/config"
	"github.com/opencoaf/caseledger/internal/database"
)

// InitializeDatabases initializes all 5 databases and applies schemas
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. cases.db - Case metadata and upload records
	casesDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cases.db",
		Profile: database.ProfileStandard,
		Name:    "cases",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cases database: %w", err)
	}
	container.CasesDB = casesDB

	// 2. config.db - Application settings (detector thresholds, credentials)
	configDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/config.db",
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		container.CloseDatabases()
		return nil, fmt.Errorf("failed to initialize config database: %w", err)
	}
	container.ConfigDB = configDB

	// 3. ledger.db - Normalized transaction ledger (evidence trail)
	ledgerDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/ledger.db",
		Profile: database.ProfileLedger, // Maximum safety, the ledger is evidence
		Name:    "ledger",
	})
	if err != nil {
		container.CloseDatabases()
		return nil, fmt.Errorf("failed to initialize ledger database: %w", err)
	}
	container.LedgerDB = ledgerDB

	// 4. analysis.db - Detection runs and alerts
	analysisDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/analysis.db",
		Profile: database.ProfileStandard,
		Name:    "analysis",
	})
	if err != nil {
		container.CloseDatabases()
		return nil, fmt.Errorf("failed to initialize analysis database: %w", err)
	}
	container.AnalysisDB = analysisDB

	// 5. cache.db - Ephemeral metrics snapshots
	cacheDB, err := database.New(database.Config{
		Path:    cfg.DataDir + "/cache.db",
		Profile: database.ProfileCache, // Maximum speed for ephemeral data
		Name:    "cache",
	})
	if err != nil {
		container.CloseDatabases()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	// Apply schemas to all databases (single source of truth)
	for _, db := range []*database.DB{casesDB, configDB, ledgerDB, analysisDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.CloseDatabases()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Msg("All databases initialized and schemas applied")

	return container, nil
}
