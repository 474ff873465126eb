package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/steam-webapi/internal/config"
	"github.com/samvad-hq/steam-webapi/internal/logger"
	"github.com/samvad-hq/steam-webapi/internal/runner"
	"github.com/samvad-hq/steam-webapi/internal/storage"
	"github.com/samvad-hq/steam-webapi/pkg/calls"
	"github.com/samvad-hq/steam-webapi/pkg/httpclient"
	"github.com/samvad-hq/steam-webapi/pkg/publishers"
	"github.com/samvad-hq/steam-webapi/pkg/webapi"
)

// Poller represents the poller runtime. It executes the configured call batch
// on every tick and hands new results to the publishers. It owns the store
// and the publishers and closes them when the loop exits.
type Poller struct {
	cfg          *config.Config
	callReg      *calls.Registry
	fanout       *publishers.Fanout
	runService   *runner.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewPoller builds a poller runtime from config files.
func NewPoller(ctx context.Context, cfg *config.Config, log logger.Logger) (*Poller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	secure := cfg.APISecure
	api, err := webapi.New(webapi.Options{
		APIKey:    cfg.APIKey,
		Secure:    &secure,
		Host:      cfg.APIHost,
		Transport: httpclient.NewRestyClient(cfg.HTTPTimeout),
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("init web api client: %w", err)
	}

	callReg, err := calls.LoadRegistry(cfg.CallsFile)
	if err != nil {
		return nil, fmt.Errorf("load calls registry: %w", err)
	}
	callList := callReg.All()
	callIDs := make([]string, 0, len(callList))
	for _, c := range callList {
		callIDs = append(callIDs, c.ID)
	}
	log.InfoObj("calls registry loaded", "calls_meta", map[string]any{
		"count": len(callIDs),
		"ids":   callIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		ResultTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"result_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Poller{
		cfg:          cfg,
		callReg:      callReg,
		fanout:       fanout,
		runService:   runner.NewService(api, fanout, log, store),
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p == nil || p.runService == nil {
		return fmt.Errorf("poller is not initialized")
	}
	defer p.Close()

	batch := p.callReg.All()
	if len(batch) == 0 {
		p.log.WarnObj("no calls configured; poller idle", "calls_file", p.cfg.CallsFile)
		<-ctx.Done()
		return ctx.Err()
	}

	p.log.InfoObj("poller loop starting", "poller_state", map[string]any{
		"calls_count":      len(batch),
		"publishers_count": p.fanout.Size(),
		"poll_interval":    p.pollInterval.String(),
	})

	if err := p.RunOnce(ctx); err != nil {
		p.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("poller loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := p.RunOnce(ctx); err != nil {
				p.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// RunOnce executes the call batch a single time.
func (p *Poller) RunOnce(ctx context.Context) error {
	if p == nil || p.runService == nil {
		return fmt.Errorf("poller is not initialized")
	}
	batch := p.callReg.All()
	start := time.Now()
	p.log.InfoObj("poll started", "poll_meta", map[string]any{
		"calls_count": len(batch),
		"started_at":  start.UTC(),
	})
	stats, err := p.runService.Run(ctx, batch)
	p.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"stats":      stats,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return err
}

// Close releases the store and the publishers, logging any errors encountered.
func (p *Poller) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.log.ErrorObj("storage close failed", "error", err)
			errs = append(errs, err)
		}
		p.store = nil
	}
	if p.fanout != nil {
		if err := p.fanout.Close(); err != nil {
			p.log.ErrorObj("publishers close failed", "error", err)
			errs = append(errs, err)
		}
		p.fanout = nil
	}
	return errors.Join(errs...)
}
