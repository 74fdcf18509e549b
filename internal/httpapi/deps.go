package httpapi

import (
	"database/sql"
	"sync/atomic"

	"autoapply-engine/internal/config"
	"autoapply-engine/internal/events"
	"autoapply-engine/internal/ledger"
	"autoapply-engine/internal/scheduler"
	"autoapply-engine/internal/workflow"
)

// Passes is the scheduler surface the API drives.
type Passes interface {
	Status() scheduler.Status
	Trigger() bool
}

// LastPass reports the most recent finished pass.
type LastPass interface {
	Last() *workflow.Result
}

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Ledger ledger.Ledger
	Passes Passes
	Runner LastPass
}
