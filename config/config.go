package config

import (
	"io/ioutil"
	"path"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/matrixorigin/multicube/metric"
	"github.com/matrixorigin/multicube/util/typeutil"
	"gopkg.in/yaml.v3"
)

var (
	kb = 1024
	mb = 1024 * kb

	defaultDataPath        = "/tmp/multicube"
	defaultStorageDirName  = "data"
	defaultHTTPAddr        = "127.0.0.1:8080"
	defaultMemTableSize    = 64 * mb
	defaultMaxOpenFiles    = 1000
	defaultLogLevel        = "info"
	defaultExecuteTimeout  = time.Second * 10
	defaultDashboardSource = "Prometheus"
)

// Config multicube config
type Config struct {
	DataPath           string `toml:"dir-data" yaml:"dir-data"`
	HTTPAddr           string `toml:"addr-http" yaml:"addr-http"`
	UseMemoryAsStorage bool   `toml:"use-memory-as-storage" yaml:"use-memory-as-storage"`
	// Storage config
	Storage StorageConfig `toml:"storage" yaml:"storage"`
	// Executor config
	Executor ExecutorConfig `toml:"executor" yaml:"executor"`
	// Log config
	Log LogConfig `toml:"log" yaml:"log"`
	// Metric Config
	Metric metric.Cfg `toml:"metric" yaml:"metric"`
	// Grafana config
	Grafana GrafanaConfig `toml:"grafana" yaml:"grafana"`
}

// Load loads the config from a toml file, or a yaml file if the extension is
// .yaml or .yml, and adjusts it
func Load(file string) (*Config, error) {
	switch filepath.Ext(file) {
	case ".yaml", ".yml":
		content, err := ioutil.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "load config %s", file)
		}
		return ParseYAML(content)
	}

	c := &Config{}
	if _, err := toml.DecodeFile(file, c); err != nil {
		return nil, errors.Wrapf(err, "load config %s", file)
	}
	c.Adjust()
	return c, nil
}

// ParseYAML parses the config from yaml content, and adjusts it
func ParseYAML(content []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(content, c); err != nil {
		return nil, errors.Wrap(err, "parse yaml config")
	}
	c.Adjust()
	return c, nil
}

// Parse parses the config from toml content, and adjusts it
func Parse(content string) (*Config, error) {
	c := &Config{}
	if _, err := toml.Decode(content, c); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	c.Adjust()
	return c, nil
}

// Adjust adjust
func (c *Config) Adjust() {
	if c.DataPath == "" {
		c.DataPath = defaultDataPath
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = defaultHTTPAddr
	}

	(&c.Storage).adjust()
	(&c.Executor).adjust()
	(&c.Log).adjust()
	(&c.Grafana).adjust()
}

// StorageDir returns the dir of the pebble storage
func (c *Config) StorageDir() string {
	return path.Join(c.DataPath, defaultStorageDirName)
}

// StorageConfig storage config
type StorageConfig struct {
	MemTableSize typeutil.ByteSize `toml:"mem-table-size" yaml:"mem-table-size"`
	MaxOpenFiles int               `toml:"max-open-files" yaml:"max-open-files"`
	Sync         bool              `toml:"sync" yaml:"sync"`
}

func (c *StorageConfig) adjust() {
	if c.MemTableSize == 0 {
		c.MemTableSize = typeutil.ByteSize(defaultMemTableSize)
	}

	if c.MaxOpenFiles == 0 {
		c.MaxOpenFiles = defaultMaxOpenFiles
	}
}

// ExecutorConfig executor config
type ExecutorConfig struct {
	// Timeout bounds one execution of scheduled operations
	Timeout typeutil.Duration `toml:"timeout" yaml:"timeout"`
}

func (c *ExecutorConfig) adjust() {
	if c.Timeout.Duration == 0 {
		c.Timeout.Duration = defaultExecuteTimeout
	}
}

// LogConfig log config
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

func (c *LogConfig) adjust() {
	if c.Level == "" {
		c.Level = defaultLogLevel
	}
}

// GrafanaConfig grafana config, the dashboard is created on start if the
// addr is set
type GrafanaConfig struct {
	Addr       string `toml:"addr" yaml:"addr"`
	APIKey     string `toml:"api-key" yaml:"api-key"`
	DataSource string `toml:"data-source" yaml:"data-source"`
}

// Enabled returns true if the dashboard should be created
func (c GrafanaConfig) Enabled() bool {
	return c.Addr != ""
}

func (c *GrafanaConfig) adjust() {
	if c.DataSource == "" {
		c.DataSource = defaultDashboardSource
	}
}
