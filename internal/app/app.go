package app

import (
	"context"

	"github.com/auto-dns/aliyun-ddns-sync/internal/alidns"
	"github.com/auto-dns/aliyun-ddns-sync/internal/config"
	"github.com/auto-dns/aliyun-ddns-sync/internal/core"
	"github.com/auto-dns/aliyun-ddns-sync/internal/notify"
	"github.com/auto-dns/aliyun-ddns-sync/internal/resolver"
	"github.com/auto-dns/aliyun-ddns-sync/internal/state"
	"github.com/rs/zerolog"
)

type App struct {
	engine *core.SyncEngine
	logger zerolog.Logger
}

// New creates a new App by wiring up all dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	res := resolver.New(cfg.IPServices, logger)
	provider := alidns.NewClient(cfg.AccessKeyID, cfg.AccessKeySecret, logger)
	notifier := notify.New(cfg.FeishuWebhookURL, logger)
	store := state.NewStore(cfg.StateFile)

	engine := core.NewSyncEngine(logger, cfg, res, provider, notifier, store)

	return &App{
		engine: engine,
		logger: logger,
	}, nil
}

// Run performs one reconciliation cycle.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().Msg("Application starting")
	return a.engine.Run(ctx)
}
