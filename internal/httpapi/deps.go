package httpapi

import (
	"database/sql"
	"sync/atomic"

	"leadswarm/internal/config"
	"leadswarm/internal/events"
	"leadswarm/internal/pipeline"
)

type Deps struct {
	DB *sql.DB

	Hub    *events.Hub
	Runner *pipeline.Runner

	// Atomic store for config.Config, hot-swapped on PUT /config
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
