// Package di provides dependency injection container
package di

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ssargent/dnastore/pkg/api"     //nolint:depguard
	"github.com/ssargent/dnastore/pkg/config"  //nolint:depguard
	"github.com/ssargent/dnastore/pkg/metrics" //nolint:depguard
	"github.com/ssargent/dnastore/pkg/storage" //nolint:depguard
	"github.com/ssargent/dnastore/pkg/store"   //nolint:depguard
)

// Container holds all the dependencies for the application
type Container struct {
	mu sync.Mutex

	config        *config.Config
	logger        *slog.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	serverFactory api.ServerFactory
	ledger        *storage.Ledger
}

// NewContainer creates a new dependency injection container with the
// default configuration
func NewContainer() *Container {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Container{
		config:        config.DefaultConfig(),
		logger:        slog.Default(),
		registry:      registry,
		metrics:       metrics.New(registry),
		serverFactory: api.NewServerFactory(),
	}
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config
}

// SetConfig replaces the active configuration
func (c *Container) SetConfig(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
}

// Logger returns the application logger
func (c *Container) Logger() *slog.Logger {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logger
}

// SetLogger replaces the application logger
func (c *Container) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// Metrics returns the collectors shared by the codec and the API
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Gatherer returns the registry the metrics are registered with
func (c *Container) Gatherer() prometheus.Gatherer {
	return c.registry
}

// Storage builds a codec from the active configuration
func (c *Container) Storage() (*store.Storage, error) {
	cfg := c.Config()
	s, err := store.New(cfg.StoreOptions(c.Logger(), c.metrics))
	if err != nil {
		return nil, fmt.Errorf("failed to create codec: %w", err)
	}
	return s, nil
}

// Ledger opens the run ledger on first use. It returns nil when the
// ledger is disabled.
func (c *Container) Ledger() (*storage.Ledger, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.config.Ledger.Enabled {
		return nil, nil
	}
	if c.ledger != nil {
		return c.ledger, nil
	}
	l, err := storage.Open(c.config.Ledger.Path)
	if err != nil {
		return nil, err
	}
	c.ledger = l
	return l, nil
}

// GetServerFactory returns the server factory
func (c *Container) GetServerFactory() api.ServerFactory {
	return c.serverFactory
}

// SetServerFactory allows overriding the server factory (for testing)
func (c *Container) SetServerFactory(factory api.ServerFactory) {
	c.serverFactory = factory
}

// Close releases the ledger if it was opened
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledger == nil {
		return nil
	}
	err := c.ledger.Close()
	c.ledger = nil
	return err
}
