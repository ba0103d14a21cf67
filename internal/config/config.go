// internal/config/config.go
package config

type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Widget  WidgetConfig  `yaml:"widget" toml:"widget"`
	Probe   ProbeConfig   `yaml:"probe" toml:"probe"`
	Monitor MonitorConfig `yaml:"monitor" toml:"monitor"`
	NATS    NATSConfig    `yaml:"nats" toml:"nats"`
	Panel   *PanelConfig  `yaml:"panel" toml:"panel"`
	Log     LogConfig     `yaml:"log" toml:"log"`
}

// ---- SERVER ----

type ServerConfig struct {
	Listen          string   `yaml:"listen" toml:"listen"`
	AllowedOrigins  []string `yaml:"allowed_origins" toml:"allowed_origins"` // empty => same host only
	WriteTimeoutMs  int      `yaml:"write_timeout_ms" toml:"write_timeout_ms"`
	EventsPerSecond float64  `yaml:"events_per_second" toml:"events_per_second"` // per page connection
	EventBurst      int      `yaml:"event_burst" toml:"event_burst"`
}

// ---- WIDGET ----

// WidgetConfig is static page parameterization. It is handed to the page
// verbatim; the engine never interprets it.
type WidgetConfig struct {
	ServiceID    string `yaml:"service_id" toml:"service_id" json:"service_id,omitempty"`
	DeploymentID string `yaml:"deployment_id" toml:"deployment_id" json:"deployment_id,omitempty"`
	ButtonID     string `yaml:"button_id" toml:"button_id" json:"button_id,omitempty"`
	ChatURL      string `yaml:"chat_url" toml:"chat_url" json:"chat_url,omitempty"`
	CaseEndpoint string `yaml:"case_endpoint" toml:"case_endpoint" json:"case_endpoint,omitempty"`
}

// ---- PROBE ----

type ProbeConfig struct {
	URL       string `yaml:"url" toml:"url"` // empty => probe always answers unknown
	TimeoutMs int    `yaml:"timeout_ms" toml:"timeout_ms"`
	DelaysMs  []int  `yaml:"delays_ms" toml:"delays_ms"` // cumulative from widget-ready
}

// ---- MONITOR ----

type MonitorConfig struct {
	WaitingThresholdMs int      `yaml:"waiting_threshold_ms" toml:"waiting_threshold_ms"`
	BenignReasons      []string `yaml:"benign_reasons" toml:"benign_reasons"`
}

// ---- NATS ----

type NATSConfig struct {
	URL     string `yaml:"url" toml:"url"` // empty => disabled
	Token   string `yaml:"token" toml:"token"`
	Subject string `yaml:"subject" toml:"subject"`
}

// ---- PANEL (Modbus indicator, optional) ----

type PanelConfig struct {
	Endpoint      string  `yaml:"endpoint" toml:"endpoint"`
	UnitID        uint8   `yaml:"unit_id" toml:"unit_id"`
	TimeoutMs     int     `yaml:"timeout_ms" toml:"timeout_ms"`
	ChatCoil      uint16  `yaml:"chat_coil" toml:"chat_coil"`
	OfflineCoil   uint16  `yaml:"offline_coil" toml:"offline_coil"`
	StatusAddress *uint16 `yaml:"status_address" toml:"status_address"` // status block (opt-in)
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text, json
}
