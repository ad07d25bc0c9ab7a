package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// BootstrapFileName is the configuration file looked up in the config directory.
const BootstrapFileName = "steering_config.yaml"

// Accepted enumerated values.
const (
	SchemaHead      = "head"
	SchemaHeadAngle = "head_angle"

	ModeQueue  = "queue"
	ModeStatic = "static"

	SinkLog    = "log"
	SinkSerial = "serial"
)

// MaxTurnForceLimit is the largest turn force the actuator accepts.
const MaxTurnForceLimit = 32

// BootstrapConfig holds the configuration loaded from steering_config.yaml
type BootstrapConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Session   SessionConfig   `yaml:"session"`
	Control   ControlConfig   `yaml:"control"`
	Actuation ActuationConfig `yaml:"actuation"`
	Route     RouteConfig     `yaml:"route"`
	ZeroMQ    ZeroMQBootstrap `yaml:"zeromq"`
	Server    ServerConfig    `yaml:"server"`
	Relay     RelayConfig     `yaml:"relay"`
}

// LoggingConfig holds logging settings from bootstrap
type LoggingConfig struct {
	Level   string `yaml:"level" env:"STEERING_LOG_LEVEL"`
	LogPath string `yaml:"log_path,omitempty" env:"STEERING_LOG_PATH"`
}

// TelemetryConfig describes the websocket telemetry source.
type TelemetryConfig struct {
	URL                string `yaml:"url" env:"STEERING_TELEMETRY_URL"`
	Schema             string `yaml:"schema" env:"STEERING_TELEMETRY_SCHEMA"`
	HandshakeTimeoutMs int    `yaml:"handshake_timeout_ms" env:"STEERING_TELEMETRY_HANDSHAKE_TIMEOUT_MS"`
}

// SessionConfig bounds the controller session.
type SessionConfig struct {
	LifetimeS int `yaml:"lifetime_s" env:"STEERING_SESSION_LIFETIME_S"`
}

// ControlConfig tunes the decision engine.
type ControlConfig struct {
	TickMs         int     `yaml:"tick_ms" env:"STEERING_CONTROL_TICK_MS"`
	ReachThreshold float64 `yaml:"reach_threshold" env:"STEERING_CONTROL_REACH_THRESHOLD"`
	RunThreshold   float64 `yaml:"run_threshold" env:"STEERING_CONTROL_RUN_THRESHOLD"`
	MaxTurnForce   int32   `yaml:"max_turn_force" env:"STEERING_CONTROL_MAX_TURN_FORCE"`
	EnableRun      *bool   `yaml:"enable_run" env:"STEERING_CONTROL_ENABLE_RUN"`
}

// ActuationConfig selects and tunes the actuation sink.
type ActuationConfig struct {
	PeriodMs     int    `yaml:"period_ms" env:"STEERING_ACTUATION_PERIOD_MS"`
	SettleMs     int    `yaml:"settle_ms" env:"STEERING_ACTUATION_SETTLE_MS"`
	Sink         string `yaml:"sink" env:"STEERING_ACTUATION_SINK"`
	SerialDevice string `yaml:"serial_device" env:"STEERING_ACTUATION_SERIAL_DEVICE"`
	SerialBaud   int    `yaml:"serial_baud" env:"STEERING_ACTUATION_SERIAL_BAUD"`
}

// RouteConfig points at the waypoint file.
type RouteConfig struct {
	File string `yaml:"file" env:"STEERING_ROUTE_FILE"`
	Mode string `yaml:"mode" env:"STEERING_ROUTE_MODE"`
}

// ZeroMQBootstrap holds ZeroMQ settings from bootstrap. An empty bind address
// disables command publishing.
type ZeroMQBootstrap struct {
	PublishBindAddress string `yaml:"publish_bind_address" env:"STEERING_ZEROMQ_PUBLISH_BIND_ADDRESS"`
	Topic              string `yaml:"topic" env:"STEERING_ZEROMQ_TOPIC"`
}

// ServerConfig holds the diagnostics HTTP server settings. Port 0 disables it.
type ServerConfig struct {
	HTTPPort int `yaml:"http_port" env:"STEERING_SERVER_HTTP_PORT"`
}

// RelayConfig holds relay process settings.
type RelayConfig struct {
	BindAddress         string `yaml:"bind_address" env:"STEERING_RELAY_BIND_ADDRESS"`
	HeartbeatIntervalMs int    `yaml:"heartbeat_interval_ms" env:"STEERING_RELAY_HEARTBEAT_INTERVAL_MS"`
	ClientTimeoutMs     int    `yaml:"client_timeout_ms" env:"STEERING_RELAY_CLIENT_TIMEOUT_MS"`
}

// LoadBootstrapConfig loads steering_config.yaml from configDir, applies
// STEERING_* environment overrides and fills defaults. Section validation is
// left to ValidateController and ValidateRelay since each process needs
// different fields.
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, BootstrapFileName)

	data, err := os.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	if err := env.Parse(&bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error applying environment overrides: %w", err)
	}

	bootstrapCfg.ApplyDefaults()

	// Relative route files are resolved against the config directory.
	if bootstrapCfg.Route.File != "" && !filepath.IsAbs(bootstrapCfg.Route.File) {
		bootstrapCfg.Route.File = filepath.Join(configDir, bootstrapCfg.Route.File)
	}

	return &bootstrapCfg, nil
}

// ApplyDefaults fills zero-valued fields.
func (c *BootstrapConfig) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Telemetry.Schema == "" {
		c.Telemetry.Schema = SchemaHead
	}
	if c.Telemetry.HandshakeTimeoutMs == 0 {
		c.Telemetry.HandshakeTimeoutMs = 5000
	}
	if c.Session.LifetimeS == 0 {
		c.Session.LifetimeS = 30
	}
	if c.Control.TickMs == 0 {
		c.Control.TickMs = 50
	}
	if c.Control.ReachThreshold == 0 {
		c.Control.ReachThreshold = 1.0
	}
	if c.Control.RunThreshold == 0 {
		c.Control.RunThreshold = 5.0
	}
	if c.Control.MaxTurnForce == 0 {
		c.Control.MaxTurnForce = MaxTurnForceLimit
	}
	if c.Actuation.PeriodMs == 0 {
		c.Actuation.PeriodMs = 50
	}
	if c.Actuation.SettleMs == 0 {
		c.Actuation.SettleMs = 50
	}
	if c.Actuation.Sink == "" {
		c.Actuation.Sink = SinkLog
	}
	if c.Actuation.SerialBaud == 0 {
		c.Actuation.SerialBaud = 115200
	}
	if c.Route.Mode == "" {
		c.Route.Mode = ModeQueue
	}
	if c.ZeroMQ.Topic == "" {
		c.ZeroMQ.Topic = "steering.command"
	}
	if c.Relay.BindAddress == "" {
		c.Relay.BindAddress = "127.0.0.1:8080"
	}
	if c.Relay.HeartbeatIntervalMs == 0 {
		c.Relay.HeartbeatIntervalMs = 5000
	}
	if c.Relay.ClientTimeoutMs == 0 {
		c.Relay.ClientTimeoutMs = 10000
	}
}

// ValidateController checks the sections the steering controller needs.
func (c *BootstrapConfig) ValidateController() error {
	if c.Telemetry.URL == "" {
		return fmt.Errorf("missing required field in bootstrap config: telemetry.url")
	}
	if c.Route.File == "" {
		return fmt.Errorf("missing required field in bootstrap config: route.file")
	}
	switch c.Telemetry.Schema {
	case SchemaHead, SchemaHeadAngle:
	default:
		return fmt.Errorf("invalid telemetry.schema in bootstrap config: %q", c.Telemetry.Schema)
	}
	switch c.Route.Mode {
	case ModeQueue, ModeStatic:
	default:
		return fmt.Errorf("invalid route.mode in bootstrap config: %q", c.Route.Mode)
	}
	switch c.Actuation.Sink {
	case SinkLog:
	case SinkSerial:
		if c.Actuation.SerialDevice == "" {
			return fmt.Errorf("missing required field in bootstrap config: actuation.serial_device")
		}
	default:
		return fmt.Errorf("invalid actuation.sink in bootstrap config: %q", c.Actuation.Sink)
	}
	if c.Control.ReachThreshold <= 0 {
		return fmt.Errorf("invalid control.reach_threshold in bootstrap config: %v", c.Control.ReachThreshold)
	}
	if c.Control.RunThreshold <= c.Control.ReachThreshold {
		return fmt.Errorf("invalid control.run_threshold in bootstrap config: %v must exceed reach_threshold %v",
			c.Control.RunThreshold, c.Control.ReachThreshold)
	}
	if c.Control.MaxTurnForce <= 0 || c.Control.MaxTurnForce > MaxTurnForceLimit {
		return fmt.Errorf("invalid control.max_turn_force in bootstrap config: %d (want 1..%d)",
			c.Control.MaxTurnForce, MaxTurnForceLimit)
	}
	if c.Control.TickMs < 0 || c.Actuation.PeriodMs < 0 || c.Actuation.SettleMs < 0 || c.Session.LifetimeS < 0 {
		return fmt.Errorf("invalid bootstrap config: durations must not be negative")
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server.http_port in bootstrap config: %d", c.Server.HTTPPort)
	}
	return nil
}

// ValidateRelay checks the relay section.
func (c *BootstrapConfig) ValidateRelay() error {
	if c.Relay.BindAddress == "" {
		return fmt.Errorf("missing required field in bootstrap config: relay.bind_address")
	}
	if c.Relay.HeartbeatIntervalMs <= 0 || c.Relay.ClientTimeoutMs <= 0 {
		return fmt.Errorf("invalid relay timing in bootstrap config: heartbeat %dms, timeout %dms",
			c.Relay.HeartbeatIntervalMs, c.Relay.ClientTimeoutMs)
	}
	if c.Relay.ClientTimeoutMs <= c.Relay.HeartbeatIntervalMs {
		return fmt.Errorf("invalid relay.client_timeout_ms in bootstrap config: %d must exceed heartbeat_interval_ms %d",
			c.Relay.ClientTimeoutMs, c.Relay.HeartbeatIntervalMs)
	}
	return nil
}

// RunEnabled reports whether the Run tier is on. Unset means on.
func (c ControlConfig) RunEnabled() bool {
	return c.EnableRun == nil || *c.EnableRun
}

func (c ControlConfig) Tick() time.Duration { return ms(c.TickMs) }

func (c ActuationConfig) Period() time.Duration { return ms(c.PeriodMs) }

func (c ActuationConfig) Settle() time.Duration { return ms(c.SettleMs) }

func (c TelemetryConfig) HandshakeTimeout() time.Duration { return ms(c.HandshakeTimeoutMs) }

func (c SessionConfig) Lifetime() time.Duration { return time.Duration(c.LifetimeS) * time.Second }

func (c RelayConfig) HeartbeatInterval() time.Duration { return ms(c.HeartbeatIntervalMs) }

func (c RelayConfig) ClientTimeout() time.Duration { return ms(c.ClientTimeoutMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
