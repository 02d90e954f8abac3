package am

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Defaults used by SetDefaults and by the getters when a Config was built
// by hand.
const (
	DefaultBaseURL         = "https://qa-cds.zinnia.com/correspondence/api/sample/Policy"
	DefaultContractParam   = "contractnumber"
	DefaultTimeoutSeconds  = 10
	DefaultTemplate        = "input.json"
	DefaultOutput          = "output.json"
	DefaultConcurrency     = 4
	DefaultWatchDebounceMS = 300
	DefaultHistoryPath     = "~/.corrfill/history.db"
	DefaultLogTheme        = "everforest"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("cds.base_url", DefaultBaseURL)
	v.SetDefault("cds.contract_param", DefaultContractParam)
	v.SetDefault("cds.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("cds.requests_per_second", 5.0) // Polite to the shared QA service
	v.SetDefault("cds.allow_private_hosts", false)

	v.SetDefault("paths.input_dir", "input")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.template", DefaultTemplate)
	v.SetDefault("paths.output", DefaultOutput)

	v.SetDefault("merge.manifest", "")

	v.SetDefault("fill.concurrency", DefaultConcurrency)
	v.SetDefault("fill.watch_debounce_ms", DefaultWatchDebounceMS)

	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", DefaultHistoryPath)

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", DefaultLogTheme)
}

// BindEnvVars explicitly binds the most commonly overridden settings, so
// they show up in AllSettings even when no file mentions them
func BindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("cds.base_url", EnvPrefix+"_CDS_BASE_URL")
	_ = v.BindEnv("cds.allow_private_hosts", EnvPrefix+"_CDS_ALLOW_PRIVATE_HOSTS")
	_ = v.BindEnv("history.path", EnvPrefix+"_HISTORY_PATH")
	_ = v.BindEnv("log.theme", EnvPrefix+"_LOG_THEME")
}

// Timeout returns the CDS request timeout
func (c CDSConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetContractParam returns the contract query parameter (default: contractnumber)
func (c CDSConfig) GetContractParam() string {
	if c.ContractParam == "" {
		return DefaultContractParam
	}
	return c.ContractParam
}

// GetHistoryPath returns the ledger path with "~" expanded
func (c *Config) GetHistoryPath() string {
	if c.History.Path == "" {
		return ExpandHome(DefaultHistoryPath)
	}
	return ExpandHome(c.History.Path)
}

// GetConcurrency returns the batch concurrency (default: 4)
func (c *Config) GetConcurrency() int {
	if c.Fill.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return c.Fill.Concurrency
}

// GetWatchDebounce returns the watch quiet period
func (c *Config) GetWatchDebounce() time.Duration {
	if c.Fill.WatchDebounceMS <= 0 {
		return DefaultWatchDebounceMS * time.Millisecond
	}
	return time.Duration(c.Fill.WatchDebounceMS) * time.Millisecond
}

// GetLogTheme returns the log theme (default: everforest)
func (c *Config) GetLogTheme() string {
	if c.Log.Theme == "" {
		return DefaultLogTheme
	}
	return c.Log.Theme
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{CDS: %s, Template: %s, Output: %s, Concurrency: %d, History: %t}",
		c.CDS.BaseURL, c.Paths.Template, c.Paths.Output, c.Fill.Concurrency, c.History.Enabled)
}
