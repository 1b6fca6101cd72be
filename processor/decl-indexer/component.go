// Package declindexer provides a processor component that extracts
// naming-relevant declarations from watched source trees and publishes
// them as declaration batches for lint.
package declindexer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/namelint/processor/decl"
	// Import language packages to trigger init() registration of extractors
	_ "github.com/c360studio/namelint/processor/decl/cpp"
)

// declIndexerSchema defines the configuration schema
var declIndexerSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Component implements the decl-indexer processor
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	platform   component.PlatformMeta

	// Per-root watchers
	watchers []*decl.Watcher
	roots    []string

	// Lifecycle management
	running   bool
	startTime time.Time
	mu        sync.RWMutex

	// Metrics - aggregated across all roots
	batchesPublished atomic.Int64
	extractFailures  atomic.Int64
	errors           atomic.Int64
	lastActivityMu   sync.RWMutex
	lastActivity     time.Time

	// Cancel functions for background goroutines
	cancelFuncs []context.CancelFunc
}

// NewComponent creates a new decl-indexer processor component
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Use default config if ports not set
	if config.Ports == nil {
		config = DefaultConfig()
		// Re-unmarshal to get user-provided values
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	roots, err := ResolveScanPaths(config.ScanPaths)
	if err != nil {
		return nil, fmt.Errorf("resolve scan paths: %w", err)
	}

	c := &Component{
		name:       "decl-indexer",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		platform:   deps.Platform,
		roots:      roots,
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("path does not exist: %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("path is not a directory: %s", root)
		}
	}

	if len(c.roots) == 0 {
		return nil, fmt.Errorf("no valid scan paths configured")
	}

	return c, nil
}

// Initialize prepares the component
func (c *Component) Initialize() error {
	return nil
}

// Start performs an initial scan of all roots and begins watching for
// changes if enabled.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}
	c.mu.Unlock()

	c.logger.Info("Starting initial declaration scan",
		"roots", len(c.roots),
		"project", c.config.Project)

	totalFiles := 0
	for _, root := range c.roots {
		watcher, err := decl.NewWatcher(decl.WatcherConfig{
			ScanRoot:      root,
			DebounceDelay: 100 * time.Millisecond,
			Logger:        c.logger,
		})
		if err != nil {
			return fmt.Errorf("create watcher for %s: %w", root, err)
		}
		c.watchers = append(c.watchers, watcher)

		results, err := watcher.ScanDirectory(ctx)
		if err != nil {
			return fmt.Errorf("initial scan failed for %s: %w", root, err)
		}

		for _, result := range results {
			if err := c.publishBatch(ctx, result); err != nil {
				c.logger.Warn("Failed to publish declaration batch",
					"path", result.Path,
					"error", err)
				c.errors.Add(1)
			}
		}
		totalFiles += len(results)
	}

	c.logger.Info("Initial scan complete",
		"roots", len(c.roots),
		"files", totalFiles,
		"batches", c.batchesPublished.Load(),
		"extract_failures", c.extractFailures.Load())

	if c.config.WatchEnabled {
		for _, watcher := range c.watchers {
			if err := c.startWatcher(ctx, watcher); err != nil {
				c.logger.Warn("Failed to start file watcher", "error", err)
			}
		}
	}

	if c.config.ScanInterval != "" {
		c.startPeriodicScan(ctx)
	}

	c.mu.Lock()
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	return nil
}

// startWatcher starts a file system watcher and drains its events.
func (c *Component) startWatcher(ctx context.Context, watcher *decl.Watcher) error {
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	c.cancelFuncs = append(c.cancelFuncs, cancel)

	go func() {
		for {
			select {
			case <-watchCtx.Done():
				return
			case event, ok := <-watcher.Events():
				if !ok {
					return
				}
				c.handleWatchEvent(watchCtx, event)
			}
		}
	}()

	return nil
}

// handleWatchEvent processes a file watcher event
func (c *Component) handleWatchEvent(ctx context.Context, event decl.WatchEvent) {
	c.updateLastActivity()

	switch event.Operation {
	case decl.OpCreate, decl.OpModify:
		if event.Result != nil {
			if err := c.publishBatch(ctx, event.Result); err != nil {
				c.logger.Warn("Failed to publish declaration batch",
					"path", event.Path,
					"error", err)
				c.errors.Add(1)
			}
		}
	case decl.OpDelete:
		c.logger.Debug("File deleted", "path", event.Path)
	}

	if event.Error != nil {
		c.logger.Warn("Watch event error",
			"path", event.Path,
			"error", event.Error)
		c.extractFailures.Add(1)
	}
}

// startPeriodicScan starts periodic full rescans
func (c *Component) startPeriodicScan(ctx context.Context) {
	interval, err := time.ParseDuration(c.config.ScanInterval)
	if err != nil {
		c.logger.Warn("Invalid scan interval, skipping periodic scan", "error", err)
		return
	}

	scanCtx, cancel := context.WithCancel(ctx)
	c.cancelFuncs = append(c.cancelFuncs, cancel)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-scanCtx.Done():
				return
			case <-ticker.C:
				c.performFullScan(scanCtx)
			}
		}
	}()

	c.logger.Info("Periodic scan started", "interval", interval)
}

// performFullScan performs a full rescan of all watched roots.
func (c *Component) performFullScan(ctx context.Context) {
	c.logger.Debug("Starting periodic rescan")

	totalFiles := 0
	for _, watcher := range c.watchers {
		results, err := watcher.ScanDirectory(ctx)
		if err != nil {
			c.logger.Error("Periodic rescan failed", "error", err)
			c.errors.Add(1)
			continue
		}

		for _, result := range results {
			if err := c.publishBatch(ctx, result); err != nil {
				c.logger.Warn("Failed to publish batch during rescan",
					"path", result.Path,
					"error", err)
			}
		}
		totalFiles += len(results)
	}

	c.logger.Debug("Periodic rescan complete", "files", totalFiles)
}

// publishBatch wraps a file's declarations in a DeclarationBatch and
// publishes it to the declaration batch subject.
func (c *Component) publishBatch(ctx context.Context, result *decl.FileResult) error {
	batch := &DeclarationBatch{
		BatchID:      uuid.NewString(),
		Project:      c.config.Project,
		Path:         result.Path,
		Hash:         result.Hash,
		Language:     result.Language,
		Declarations: result.Declarations,
		ExtractedAt:  time.Now().UTC(),
	}

	baseMsg := message.NewBaseMessage(batch.Schema(), batch, c.name)
	data, err := json.Marshal(baseMsg)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}

	js, err := c.natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}

	if _, err := js.Publish(ctx, c.config.BatchSubject(), data); err != nil {
		return fmt.Errorf("publish batch: %w", err)
	}

	c.batchesPublished.Add(1)
	c.updateLastActivity()
	return nil
}

// updateLastActivity safely updates the last activity timestamp
func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

// getLastActivity safely retrieves the last activity timestamp
func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}

// Stop gracefully stops the component within the given timeout
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	for _, cancel := range c.cancelFuncs {
		cancel()
	}
	c.cancelFuncs = nil

	for _, watcher := range c.watchers {
		if err := watcher.Stop(); err != nil {
			c.logger.Warn("Error stopping watcher", "error", err)
		}
	}

	c.running = false
	c.logger.Info("Declaration indexer stopped",
		"roots", len(c.roots),
		"batches_published", c.batchesPublished.Load(),
		"extract_failures", c.extractFailures.Load(),
		"errors", c.errors.Load())

	return nil
}

// Discoverable interface implementation

// Meta returns component metadata
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "decl-indexer",
		Type:        "processor",
		Description: "Extracts source declarations and publishes batches for naming lint",
		Version:     "0.1.0",
	}
}

// InputPorts returns configured input port definitions
func (c *Component) InputPorts() []component.Port {
	// decl-indexer has no input ports - it generates data from the file system
	return []component.Port{}
}

// OutputPorts returns configured output port definitions
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}

	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

// buildPort creates a component.Port from a PortDefinition, using JetStreamPort
// for jetstream-type ports and NATSPort for core NATS ports.
func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema
func (c *Component) ConfigSchema() component.ConfigSchema {
	return declIndexerSchema
}

// Health returns the current health status
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.errors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}
