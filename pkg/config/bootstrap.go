package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BootstrapFileName is the file LoadBootstrapConfig reads from the config directory.
const BootstrapFileName = "controller_config.yaml"

// Parameter sources selectable under params.source.
const (
	ParamSourceSim      = "sim"
	ParamSourceHardware = "hardware"
)

// BootstrapConfig holds the initial configuration loaded from controller_config.yaml
type BootstrapConfig struct {
	Logging LoggingConfig         `yaml:"logging"`
	Server  BootstrapServerConfig `yaml:"server"`
	ZeroMQ  ZeroMQBootstrap       `yaml:"zeromq"`
	Control ControlConfig         `yaml:"control"`
	Params  ParamsConfig          `yaml:"params"`
}

// LoggingConfig holds logging settings from bootstrap
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// BootstrapServerConfig holds the HTTP API settings
type BootstrapServerConfig struct {
	HTTPPort int `yaml:"http_port"`
}

// ZeroMQBootstrap holds ZeroMQ settings from bootstrap
type ZeroMQBootstrap struct {
	StateBindAddress   string `yaml:"state_bind_address"`
	CommandBindAddress string `yaml:"command_bind_address"`
	MessageBufferSize  int    `yaml:"message_buffer_size"`
}

// ControlConfig selects the controller instance and its tick rate.
type ControlConfig struct {
	Name           string  `yaml:"name"`
	RateHz         float64 `yaml:"rate_hz"`
	TrajectoryFile string  `yaml:"trajectory_file,omitempty"`
}

// ParamsConfig selects where controller gains and limits come from.
type ParamsConfig struct {
	Source string `yaml:"source"`
	File   string `yaml:"file,omitempty"`
}

// LoadBootstrapConfig loads the bootstrap configuration from controller_config.yaml
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

	if err := bootstrapCfg.validate(); err != nil {
		return nil, err
	}
	bootstrapCfg.applyDefaults(configDir)

	return &bootstrapCfg, nil
}

func (c *BootstrapConfig) validate() error {
	if c.ZeroMQ.StateBindAddress == "" {
		return fmt.Errorf("missing required field in bootstrap config: zeromq.state_bind_address")
	}
	if c.ZeroMQ.CommandBindAddress == "" {
		return fmt.Errorf("missing required field in bootstrap config: zeromq.command_bind_address")
	}
	switch c.Params.Source {
	case "":
		return fmt.Errorf("missing required field in bootstrap config: params.source")
	case ParamSourceSim:
		if c.Params.File == "" {
			return fmt.Errorf("missing required field in bootstrap config: params.file")
		}
	case ParamSourceHardware:
	default:
		return fmt.Errorf("invalid params.source '%s' in bootstrap config (want %s or %s)",
			c.Params.Source, ParamSourceSim, ParamSourceHardware)
	}
	if c.Control.RateHz < 0 {
		return fmt.Errorf("invalid control.rate_hz %v in bootstrap config", c.Control.RateHz)
	}
	return nil
}

// applyDefaults fills optional fields and resolves relative file paths
// against the config directory.
func (c *BootstrapConfig) applyDefaults(configDir string) {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.ZeroMQ.MessageBufferSize <= 0 {
		c.ZeroMQ.MessageBufferSize = 1000
	}
	if c.Control.Name == "" {
		c.Control.Name = "QuadControlParams"
	}
	if c.Control.RateHz == 0 {
		c.Control.RateHz = 500
	}
	c.Params.File = resolve(configDir, c.Params.File)
	c.Control.TrajectoryFile = resolve(configDir, c.Control.TrajectoryFile)
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
