package metric

import "os"

// Cfg metric cfg
type Cfg struct {
	Addr     string `toml:"addr" yaml:"addr"`
	Interval int    `toml:"interval" yaml:"interval"`
	Job      string `toml:"job" yaml:"job"`
	Instance string `toml:"instance" yaml:"instance"`
}

func (c Cfg) instance() string {
	if c.Instance != "" {
		return c.Instance
	}

	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}

	return name
}

// Enabled returns true if the push gateway is configured
func (c Cfg) Enabled() bool {
	return c.Interval > 0 && c.Addr != "" && c.Job != ""
}
