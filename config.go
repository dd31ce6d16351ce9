package frostload

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRampInterval     = 100 * time.Millisecond
	DefaultIterationTimeout = 10 * time.Second
	DefaultSetupTimeout     = 60 * time.Second
	DefaultTeardownTimeout  = 60 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogEncoding      = "console"
	DefaultPrometheusPort   = 2112
)

// Stage is one timed ramp target of a schedule
type Stage struct {
	// Duration of the ramp toward Target
	Duration time.Duration `yaml:"duration" json:"duration"`
	// Target amount of concurrent virtual users
	Target int `yaml:"target" json:"target"`
}

// ReportOptions selects report outputs
type ReportOptions struct {
	// CSV writes per-iteration and per-tick csv logs
	CSV bool `yaml:"csv" json:"csv"`
	// HTML renders percentiles chart from tick log, requires CSV
	HTML bool `yaml:"html" json:"html"`
	// Dir where reports are written, current dir by default
	Dir string `yaml:"dir" json:"dir"`
}

// Prometheus exporter options
type Prometheus struct {
	Enable bool `yaml:"enable" json:"enable"`
	Port   int  `yaml:"port" json:"port"`
}

// TargetConfig describes storage under test, consumed by scenarios
type TargetConfig struct {
	// Endpoint host:port of a storage node or gateway
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// Credential hex encoded private key, empty for anonymous mode
	Credential string `yaml:"credential" json:"-"`
	// DialTimeout for new connections
	DialTimeout time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	// StreamTimeout for a single request round trip
	StreamTimeout time.Duration `yaml:"stream_timeout" json:"stream_timeout"`
	// PayloadFile is read once as raw bytes
	PayloadFile string `yaml:"payload_file" json:"payload_file"`
	// PayloadSizeKB random payload size when no file is given
	PayloadSizeKB int `yaml:"payload_size_kb" json:"payload_size_kb"`
	// Container creation params, see native.ParseContainerParams
	Container map[string]string `yaml:"container" json:"container"`
	// ContainerID of an existing container (onsite scenario)
	ContainerID string `yaml:"container_id" json:"container_id"`
	// PresetFile produced by the preset command (read scenario)
	PresetFile string `yaml:"preset_file" json:"preset_file"`
	// Bucket existing bucket name for s3 scenario, a new one is created when empty
	Bucket string `yaml:"bucket" json:"bucket"`
	// AccessKey and SecretKey of s3 gateway, shared aws config is used when empty
	AccessKey string `yaml:"access_key" json:"-"`
	SecretKey string `yaml:"secret_key" json:"-"`
	// Region for s3 scenario
	Region string `yaml:"region" json:"region"`
}

// RunnerConfig runner configuration
type RunnerConfig struct {
	// Name of a runner instance
	Name string `yaml:"name" json:"name"`
	// Scenario registered name, used by cli
	Scenario string `yaml:"scenario" json:"scenario"`
	// Target storage settings
	Target TargetConfig `yaml:"target" json:"target"`
	// Stages schedule of virtual users
	Stages []Stage `yaml:"stages" json:"stages"`
	// StartVUs amount of virtual users before first stage ramp
	StartVUs int `yaml:"start_vus" json:"start_vus"`
	// RampInterval how often active virtual users are adjusted
	RampInterval time.Duration `yaml:"ramp_interval" json:"ramp_interval"`
	// RPS caps iterations per second across all virtual users, 0 is unlimited
	RPS int `yaml:"rps" json:"rps"`
	// IterationTimeout timeout of one iteration
	IterationTimeout time.Duration `yaml:"iteration_timeout" json:"iteration_timeout"`
	// SetupTimeout timeout of scenario setup
	SetupTimeout time.Duration `yaml:"setup_timeout" json:"setup_timeout"`
	// TeardownTimeout timeout of scenario teardown
	TeardownTimeout time.Duration `yaml:"teardown_timeout" json:"teardown_timeout"`
	// WaitBefore time to wait before start in case we didn't know start criteria
	WaitBefore time.Duration `yaml:"wait_before" json:"wait_before"`
	// DumpTransport dump http requests to stdout
	DumpTransport bool `yaml:"dump_transport" json:"dump_transport"`
	// GoroutinesDump on exit signal
	GoroutinesDump bool `yaml:"goroutines_dump" json:"goroutines_dump"`
	// LogLevel debug|info, etc.
	LogLevel string `yaml:"log_level" json:"log_level"`
	// LogEncoding json|console
	LogEncoding string `yaml:"log_encoding" json:"log_encoding"`
	// ReportOptions report outputs
	ReportOptions *ReportOptions `yaml:"report" json:"report"`
	// Prometheus exporter
	Prometheus *Prometheus `yaml:"prometheus" json:"prometheus"`
}

// TotalDuration is the whole run time
func (c RunnerConfig) TotalDuration() time.Duration {
	var d time.Duration
	for _, s := range c.Stages {
		d += s.Duration
	}
	return d
}

// MaxTarget the biggest amount of virtual users in a schedule
func (c RunnerConfig) MaxTarget() int {
	max := c.StartVUs
	for _, s := range c.Stages {
		if s.Target > max {
			max = s.Target
		}
	}
	return max
}

// Validate checks all settings and returns a list of strings with problems.
func (c RunnerConfig) Validate() (list []string) {
	if len(c.Stages) == 0 {
		list = append(list, "please set at least one stage")
	}
	for i, s := range c.Stages {
		if s.Duration < 0 {
			list = append(list, fmt.Sprintf("stage %d: please set duration >= 0", i))
		}
		if s.Target < 0 {
			list = append(list, fmt.Sprintf("stage %d: please set target >= 0", i))
		}
	}
	if len(c.Stages) > 0 && c.TotalDuration() <= 0 {
		list = append(list, "please set total stages duration > 0")
	}
	if c.StartVUs < 0 {
		list = append(list, "please set start vus >= 0")
	}
	if c.RPS < 0 {
		list = append(list, "please set rps >= 0, 0 means unlimited")
	}
	if c.IterationTimeout < 0 {
		list = append(list, "please set iteration timeout >= 0")
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		list = append(list, "please set log level debug|info|warn|error")
	}
	switch c.LogEncoding {
	case "", "console", "json":
	default:
		list = append(list, "please set log encoding console|json")
	}
	if c.ReportOptions != nil && c.ReportOptions.HTML && !c.ReportOptions.CSV {
		list = append(list, "html report requires csv report")
	}
	return
}

// DefaultCfgValues fills empty settings
func (c *RunnerConfig) DefaultCfgValues() {
	if c.Name == "" {
		c.Name = "frostload"
	}
	if c.RampInterval <= 0 {
		c.RampInterval = DefaultRampInterval
	}
	if c.IterationTimeout == 0 {
		c.IterationTimeout = DefaultIterationTimeout
	}
	if c.SetupTimeout <= 0 {
		c.SetupTimeout = DefaultSetupTimeout
	}
	if c.TeardownTimeout <= 0 {
		c.TeardownTimeout = DefaultTeardownTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogEncoding == "" {
		c.LogEncoding = DefaultLogEncoding
	}
	if c.ReportOptions == nil {
		c.ReportOptions = &ReportOptions{}
	}
	if c.Prometheus != nil && c.Prometheus.Port == 0 {
		c.Prometheus.Port = DefaultPrometheusPort
	}
}

func (c RunnerConfig) validationError() error {
	if list := c.Validate(); len(list) > 0 {
		return errors.Wrap(ErrInvalidConfig, strings.Join(list, "; "))
	}
	return nil
}

// LoadConfig reads yaml runner config, unknown keys are rejected
func LoadConfig(path string) (*RunnerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return ParseConfig(data)
}

// ParseConfig decodes yaml runner config, unknown keys are rejected
func ParseConfig(data []byte) (*RunnerConfig, error) {
	var cfg RunnerConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return &cfg, nil
}
