package authbridge

import (
	"context"
	"errors"
	"fmt"
)

// Builder assembles a [Client]. Configure it once, call [Builder.Build], and
// discard it; a Builder must not be reused.
type Builder struct {
	config    Config
	bridge    Bridge
	auditSink AuditSink

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBridge injects the native bridge. Required.
func (b *Builder) WithBridge(bridge Bridge) *Builder {
	b.bridge = bridge
	return b
}

// WithAuditSink sets the destination for audit events. Ignored unless
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithAppName sets the app label stamped on audit events.
func (b *Builder) WithAppName(name string) *Builder {
	b.config.App.Name = name
	return b
}

// WithMetricsEnabled toggles counter collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the sign-in latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, seeds the state cache from the bridge,
// and establishes the single lifetime subscription to bridge state events.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.bridge == nil {
		return nil, errors.New("bridge required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		config:  cfg,
		bridge:  b.bridge,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	state, err := b.bridge.CurrentUser(context.Background())
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("seed current user: %w", err)
	}
	client.seedState(state)

	b.bridge.Subscribe(client.handleAuthState)

	b.built = true

	return client, nil
}
