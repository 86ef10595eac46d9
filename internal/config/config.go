// Package config centralizes every tunable flag for the serve
// subcommand, following the layering convention used throughout
// the reference corpus: struct fields registered against a pflag.FlagSet,
// an optional YAML file unmarshalled over the defaults before flags are
// reapplied (so CLI flags always win), and a Validate rejecting anything
// the process can't safely start with.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable for a single clustermemb "serve" process
// (real TCP). The "simulate" subcommand does not read it.
type Config struct {
	// Protocol constants, spec §3.
	TFail   int64 `json:"t_fail" yaml:"t_fail"`
	TRemove int64 `json:"t_remove" yaml:"t_remove"`
	TGossip int64 `json:"t_gossip" yaml:"t_gossip"`

	// TickInterval paces WallClock in the serve path. Ignored by
	// simulate, which advances its own logical clock immediately.
	TickInterval string `json:"tick_interval" yaml:"tick_interval"`

	// BindAddr is the wiretransport listen address for serve.
	BindAddr string `json:"bind_addr" yaml:"bind_addr"`

	// IntroducerID and IntroducerPort name the node to introduce through. ID 1 / port 0 by
	// convention, spec §4.1.
	IntroducerID   uint32 `json:"introducer_id" yaml:"introducer_id"`
	IntroducerPort uint16 `json:"introducer_port" yaml:"introducer_port"`

	// StatusAddr exposes the read-only HTTP surface (/members, /metrics).
	StatusAddr string `json:"status_addr" yaml:"status_addr"`

	// EventsLogPath and DebugLogPath are the two logsink streams.
	EventsLogPath string `json:"events_log_path" yaml:"events_log_path"`
	DebugLogPath  string `json:"debug_log_path" yaml:"debug_log_path"`

	// LogLevel is checked by Validate (debug, info, warn, error). logsink
	// does not read it: the debug stream records every line.
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Default returns a Config populated with the canonical defaults from
// spec §3 and sensible process defaults for everything else.
func Default() *Config {
	return &Config{
		TFail:          5,
		TRemove:        10,
		TGossip:        5,
		TickInterval:   "1s",
		BindAddr:       ":7946",
		IntroducerID:   1,
		IntroducerPort: 0,
		StatusAddr:     ":7947",
		EventsLogPath:  "membership-events.log",
		DebugLogPath:   "membership-debug.log",
		LogLevel:       "info",
	}
}

// RegisterFlags binds every field to fs, defaulting to whatever c
// currently holds (typically the result of Default()).
func (c *Config) RegisterFlags(fs *pflag.FlagSet) {
	fs.Int64Var(&c.TFail, "protocol.t-fail", c.TFail,
		"Initial gossip countdown in ticks; peers are pruned on t-remove alone.")
	fs.Int64Var(&c.TRemove, "protocol.t-remove", c.TRemove,
		"Ticks of silence before a peer is pruned from the table.")
	fs.Int64Var(&c.TGossip, "protocol.t-gossip", c.TGossip,
		"Ticks between gossip emissions.")
	fs.StringVar(&c.TickInterval, "clock.tick-interval", c.TickInterval,
		"Real-time duration per tick in the serve path, e.g. '1s'.")
	fs.StringVar(&c.BindAddr, "transport.bind-addr", c.BindAddr,
		"Address to bind the wiretransport listener to in the serve path.")
	fs.Uint32Var(&c.IntroducerID, "introducer.id", c.IntroducerID,
		"Node id of the introducer peers bootstrap through.")
	fs.Uint16Var(&c.IntroducerPort, "introducer.port", c.IntroducerPort,
		"Port of the introducer peers bootstrap through.")
	fs.StringVar(&c.StatusAddr, "status.bind-addr", c.StatusAddr,
		"Address to bind the read-only status/metrics HTTP surface to.")
	fs.StringVar(&c.EventsLogPath, "log.events-path", c.EventsLogPath,
		"File path for structured node add/remove events.")
	fs.StringVar(&c.DebugLogPath, "log.debug-path", c.DebugLogPath,
		"File path for free-form debug log lines.")
	fs.StringVar(&c.LogLevel, "log.level", c.LogLevel,
		"Log level, one of debug, info, warn, error; validated only, the debug log stream records every line.")
}

// Validate rejects any configuration the process can't safely start
// with. Only initialization errors like these abort the process before
// anything starts (spec §7's "only initialization errors abort").
func (c *Config) Validate() error {
	if c.TFail <= 0 || c.TRemove <= 0 || c.TGossip <= 0 {
		return fmt.Errorf("config: protocol constants must be positive (t_fail=%d t_remove=%d t_gossip=%d)",
			c.TFail, c.TRemove, c.TGossip)
	}
	if c.TRemove < c.TFail {
		return fmt.Errorf("config: t_remove (%d) must be >= t_fail (%d)", c.TRemove, c.TFail)
	}
	if c.BindAddr == "" {
		return fmt.Errorf("config: missing transport bind addr")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unsupported log level %q", c.LogLevel)
	}
	if c.EventsLogPath == "" || c.DebugLogPath == "" {
		return fmt.Errorf("config: missing log file path")
	}
	return nil
}

// LoadYAML unmarshals the file at path over c, so that values present
// in the file override whatever c currently holds, including values
// already parsed from flags. A caller that has already parsed flags
// reapplies the explicitly set ones afterwards so that flags win over
// the file, which in turn wins over Default().
func LoadYAML(c *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}
