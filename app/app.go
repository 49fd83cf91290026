// ABOUTME: Application container wiring the four entity services over one backend
// ABOUTME: Opens the configured record client and export sink and owns their lifetimes
package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/export"
	"github.com/harperreed/dealdesk/kv"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/notify"
	"github.com/harperreed/dealdesk/record"
	"github.com/harperreed/dealdesk/remote"
	"github.com/harperreed/dealdesk/services"
	"github.com/harperreed/dealdesk/viz"
	"go.uber.org/zap"
)

// Container holds the services and any registered state slices. It carries
// no domain state of its own.
type Container struct {
	Contacts   *services.Contacts
	Companies  *services.Companies
	Deals      *services.Deals
	Activities *services.Activities

	Client   record.Client
	Notifier notify.Notifier
	Logger   *zap.Logger

	mu      sync.RWMutex
	slices  map[string]any
	closers []io.Closer
}

// New wires services over an existing client.
func New(client record.Client, notifier notify.Notifier, sink export.Sink, logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := services.Deps{Client: client, Notifier: notifier, Logger: logger, Now: time.Now}
	return &Container{
		Contacts:   services.NewContacts(deps, sink),
		Companies:  services.NewCompanies(deps),
		Deals:      services.NewDeals(deps),
		Activities: services.NewActivities(deps),
		Client:     client,
		Notifier:   notifier,
		Logger:     logger,
		slices:     map[string]any{},
	}
}

// Open builds the record client and export sink cfg selects and wires the
// services over them.
func Open(ctx context.Context, cfg *config.Config, notifier notify.Notifier, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, closer, err := openClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sink, err := openSink(ctx, cfg.Export)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	c := New(client, notifier, sink, logger)
	if closer != nil {
		c.closers = append(c.closers, closer)
	}
	logger.Debug("container opened", zap.String("backend", string(cfg.Backend)))
	return c, nil
}

func openClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (record.Client, io.Closer, error) {
	local := func(store record.Store) record.Client {
		return record.NewLocal(store, models.Schema(), record.WithLogger(logger.Named("local")))
	}

	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return local(store), store, nil
	case config.BackendBadger:
		store, err := kv.Open(cfg.KVDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open kv store: %w", err)
		}
		return local(store), store, nil
	case config.BackendMemory:
		return local(record.NewMemoryStore()), nil, nil
	case config.BackendRemote:
		client, err := remote.New(ctx, remote.Config{
			BaseURL:      cfg.Remote.BaseURL,
			ProjectID:    cfg.Remote.ProjectID,
			APIKey:       cfg.Remote.APIKey,
			ClientID:     cfg.Remote.ClientID,
			ClientSecret: cfg.Remote.ClientSecret,
			TokenURL:     cfg.Remote.TokenURL,
			Timeout:      cfg.Remote.TimeoutDuration(),
		}, remote.WithLogger(logger.Named("remote")))
		if err != nil {
			return nil, nil, err
		}
		return client, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func openSink(ctx context.Context, cfg config.ExportConfig) (export.Sink, error) {
	if cfg.S3Bucket == "" {
		return export.DirSink{Dir: cfg.Dir, Overwrite: cfg.Overwrite}, nil
	}
	sink, err := export.NewS3Sink(ctx, export.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		Prefix:    cfg.S3Prefix,
		PathStyle: cfg.S3PathStyle,
		Overwrite: cfg.Overwrite,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure s3 export: %w", err)
	}
	return sink, nil
}

// Snapshot fetches every record type for the dashboard and graph views.
func (c *Container) Snapshot(ctx context.Context) viz.Snapshot {
	return viz.Snapshot{
		Contacts:   c.Contacts.GetAll(ctx),
		Companies:  c.Companies.GetAll(ctx),
		Deals:      c.Deals.GetAll(ctx),
		Activities: c.Activities.GetAll(ctx),
		Now:        time.Now(),
	}
}

// Register stores a named state slice. Registering a name twice replaces
// the earlier slice.
func (c *Container) Register(name string, slice any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slices[name] = slice
}

// Slice returns a registered slice.
func (c *Container) Slice(name string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.slices[name]
	return s, ok
}

// Close releases the backend.
func (c *Container) Close() error {
	var first error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
