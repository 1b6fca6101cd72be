// Package naminglint provides a JetStream processor that checks
// declaration batches against the naming policy. It consumes
// DeclarationBatch messages, runs the policy engine over every
// declaration, and publishes a LintReport per batch.
package naminglint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/namelint/policy"
	declindexer "github.com/c360studio/namelint/processor/decl-indexer"
)

// Component implements the naming-lint processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	engine     *policy.Engine

	// JetStream consumer state.
	consumer jetstream.Consumer

	// Prometheus metrics and their registry, exposed for the serve
	// command's /metrics endpoint.
	metrics  *Metrics
	registry *prometheus.Registry

	// Lifecycle.
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics.
	batchesProcessed atomic.Int64
	batchesPassed    atomic.Int64
	batchesFailed    atomic.Int64
	errorsCount      atomic.Int64
	lastActivityMu   sync.RWMutex
	lastActivity     time.Time
}

// NewComponent constructs a naming-lint Component from raw JSON config
// and semstreams dependencies.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Apply defaults for any unset fields.
	defaults := DefaultConfig()
	if config.StreamName == "" {
		config.StreamName = defaults.StreamName
	}
	if config.ConsumerName == "" {
		config.ConsumerName = defaults.ConsumerName
	}
	if config.Ports == nil {
		config.Ports = defaults.Ports
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	pol := policy.DefaultPolicy()
	if config.PolicyPath != "" {
		loaded, err := policy.LoadPolicy(config.PolicyPath)
		if err != nil {
			return nil, fmt.Errorf("load policy: %w", err)
		}
		pol = loaded
	}

	registry := prometheus.NewRegistry()

	return &Component{
		name:       "naming-lint",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     deps.GetLogger(),
		engine:     policy.NewEngine(pol),
		metrics:    NewMetrics(registry),
		registry:   registry,
	}, nil
}

// MetricsRegistry returns the Prometheus registry holding this
// component's metrics.
func (c *Component) MetricsRegistry() *prometheus.Registry {
	return c.registry
}

// Initialize prepares the component for startup.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized naming-lint",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"policy_path", c.config.PolicyPath)
	return nil
}

// Start begins consuming DeclarationBatch messages from JetStream.
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

	c.running = true
	c.startTime = time.Now()

	subCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	js, err := c.natsClient.JetStream()
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("get jetstream: %w", err)
	}

	stream, err := js.Stream(subCtx, c.config.StreamName)
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("get stream %s: %w", c.config.StreamName, err)
	}

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		FilterSubject: c.config.BatchSubject(),
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
	}

	consumer, err := stream.CreateOrUpdateConsumer(subCtx, consumerConfig)
	if err != nil {
		c.rollbackStart(cancel)
		return fmt.Errorf("create consumer: %w", err)
	}
	c.consumer = consumer

	go c.consumeLoop(subCtx)

	c.logger.Info("naming-lint started",
		"stream", c.config.StreamName,
		"consumer", c.config.ConsumerName,
		"subject", c.config.BatchSubject())

	return nil
}

func (c *Component) rollbackStart(cancel context.CancelFunc) {
	c.mu.Lock()
	c.running = false
	c.cancel = nil
	c.mu.Unlock()
	cancel()
}

// consumeLoop fetches messages from the JetStream consumer in a tight
// loop until the context is cancelled.
func (c *Component) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msgs, err := c.consumer.Fetch(1, jetstream.FetchMaxWait(5*time.Second))
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Debug("Fetch timeout or error", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleMessage(ctx, msg)
		}

		if msgs.Error() != nil && msgs.Error() != context.DeadlineExceeded {
			c.logger.Warn("Message fetch error", "error", msgs.Error())
		}
	}
}

// handleMessage processes a single DeclarationBatch message.
func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	c.batchesProcessed.Add(1)
	c.updateLastActivity()

	batch, err := parseBatch(msg.Data())
	if err != nil {
		c.errorsCount.Add(1)
		c.metrics.BatchesTotal.WithLabelValues("parse_error").Inc()
		c.logger.Error("Failed to parse batch", "error", err)
		if nakErr := msg.Nak(); nakErr != nil {
			c.logger.Warn("Failed to NAK message", "error", nakErr)
		}
		return
	}

	if err := batch.Validate(); err != nil {
		c.logger.Error("Invalid batch", "error", err)
		c.metrics.BatchesTotal.WithLabelValues("invalid").Inc()
		// ACK invalid messages, they will not succeed on retry.
		if ackErr := msg.Ack(); ackErr != nil {
			c.logger.Warn("Failed to ACK invalid message", "error", ackErr)
		}
		return
	}

	c.logger.Debug("Checking declaration batch",
		"batch_id", batch.BatchID,
		"path", batch.Path,
		"declarations", len(batch.Declarations))

	report := c.lintBatch(batch)

	if report.Passed {
		c.batchesPassed.Add(1)
	} else {
		c.batchesFailed.Add(1)
	}

	if err := c.publishReport(ctx, report); err != nil {
		c.logger.Warn("Failed to publish lint report",
			"batch_id", batch.BatchID,
			"error", err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		c.logger.Warn("Failed to ACK message", "error", ackErr)
	}

	c.logger.Info("Declaration batch checked",
		"batch_id", batch.BatchID,
		"path", batch.Path,
		"passed", report.Passed,
		"violations", len(report.Violations))
}

// lintBatch runs the policy engine over a batch. A classification
// failure aborts the batch: the report carries the error and no
// verdicts, since partial results would be misleading.
func (c *Component) lintBatch(batch *declindexer.DeclarationBatch) *LintReport {
	report := &LintReport{
		BatchID:   batch.BatchID,
		Project:   batch.Project,
		Path:      batch.Path,
		CheckedAt: time.Now().UTC(),
	}

	verdicts, err := c.engine.CheckAll(batch.Declarations)
	if err != nil {
		c.errorsCount.Add(1)
		if errors.Is(err, policy.ErrUnknownCategory) {
			c.metrics.BatchesTotal.WithLabelValues("unknown_category").Inc()
		} else {
			c.metrics.BatchesTotal.WithLabelValues("error").Inc()
		}
		c.logger.Error("Batch check failed",
			"batch_id", batch.BatchID,
			"error", err)
		report.Error = err.Error()
		return report
	}

	report.DeclarationsChecked = len(verdicts)
	report.Passed = true
	c.metrics.DeclarationsCheckedTotal.Add(float64(len(verdicts)))

	for _, verdict := range verdicts {
		if verdict.Compliant {
			continue
		}
		// Ignore-severity rules produce no reported violations.
		if verdict.Violated.Severity == policy.SeverityIgnore {
			continue
		}
		report.Passed = false
		report.Violations = append(report.Violations, verdict)
		c.metrics.ViolationsTotal.WithLabelValues(
			verdict.Violated.ID,
			verdict.Violated.Severity.String(),
		).Inc()
	}

	if report.Passed {
		c.metrics.BatchesTotal.WithLabelValues("passed").Inc()
	} else {
		c.metrics.BatchesTotal.WithLabelValues("failed").Inc()
	}

	return report
}

// parseBatch unwraps the BaseMessage envelope around a
// DeclarationBatch. Bare payloads without an envelope are tolerated for
// direct publishes in tests and tooling.
func parseBatch(data []byte) (*declindexer.DeclarationBatch, error) {
	var envelope struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	raw := envelope.Payload
	if len(raw) == 0 {
		raw = data
	}

	var batch declindexer.DeclarationBatch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal batch: %w", err)
	}
	return &batch, nil
}

// publishReport publishes a LintReport to JetStream.
// Subject: naming.lint.report.<batch_id>
func (c *Component) publishReport(ctx context.Context, report *LintReport) error {
	baseMsg := message.NewBaseMessage(report.Schema(), report, c.name)

	data, err := json.Marshal(baseMsg)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	js, err := c.natsClient.JetStream()
	if err != nil {
		return fmt.Errorf("get jetstream: %w", err)
	}

	subject := fmt.Sprintf("naming.lint.report.%s", report.BatchID)
	if _, err := js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}

	// Copy cancel function and clear state before releasing lock
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	// Cancel context after releasing lock to avoid potential deadlock
	if cancel != nil {
		cancel()
	}

	c.logger.Info("naming-lint stopped",
		"batches_processed", c.batchesProcessed.Load(),
		"batches_passed", c.batchesPassed.Load(),
		"batches_failed", c.batchesFailed.Load(),
		"errors", c.errorsCount.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "naming-lint",
		Type:        "processor",
		Description: "Checks declaration batches against the naming policy",
		Version:     "0.1.0",
	}
}

// InputPorts returns the configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, def := range c.config.Ports.Inputs {
		ports[i] = component.Port{
			Name:        def.Name,
			Direction:   component.DirectionInput,
			Required:    def.Required,
			Description: def.Description,
			Config:      component.NATSPort{Subject: def.Subject},
		}
	}
	return ports
}

// OutputPorts returns the configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, def := range c.config.Ports.Outputs {
		ports[i] = component.Port{
			Name:        def.Name,
			Direction:   component.DirectionOutput,
			Required:    def.Required,
			Description: def.Description,
			Config:      component.NATSPort{Subject: def.Subject},
		}
	}
	return ports
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return namingLintSchema
}

// Health returns the current health status.
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
		ErrorCount: int(c.errorsCount.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
