package authbridge

import "errors"

// Config defines the facade-level configuration. It is copied at Build time;
// later mutation of the caller's value has no effect.
type Config struct {
	App     AppConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
APP CONFIG
====================================
*/

// AppConfig identifies the logical app instance the bridge serves and the
// default language code forwarded with templated-email operations.
type AppConfig struct {
	// Name distinguishes audit output when several clients run in one
	// process. Defaults to "[DEFAULT]".
	Name string
	// LanguageCode is the default BCP 47 tag forwarded to the bridge for
	// verification and reset emails when the context carries none.
	LanguageCode string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metric counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Name: "[DEFAULT]",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate reports the first configuration problem found, or nil.
func (c Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("App.Name must not be empty")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics.EnableLatencyHistograms requires Metrics.Enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; a shallow copy is a deep copy.
	return cfg
}
