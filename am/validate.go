package am

import (
	"net/url"

	"github.com/teranos/corrfill/errors"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.CDS.BaseURL == "" {
		return errors.WithHint(
			errors.New("cds.base_url cannot be empty"),
			"set it in am.toml or CORRFILL_CDS_BASE_URL",
		)
	}
	u, err := url.Parse(c.CDS.BaseURL)
	if err != nil {
		return errors.Wrapf(err, "cds.base_url %q is not a valid URL", c.CDS.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Newf("cds.base_url must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.Newf("cds.base_url %q has no host", c.CDS.BaseURL)
	}

	// Timeout: 0 would mean "no time at all", not "no limit"
	if c.CDS.TimeoutSeconds <= 0 {
		return errors.Newf("cds.timeout_seconds must be > 0, got %d", c.CDS.TimeoutSeconds)
	}

	// Rate: 0 = unlimited, negative = invalid
	if c.CDS.RequestsPerSecond < 0 {
		return errors.Newf("cds.requests_per_second must be >= 0, got %f", c.CDS.RequestsPerSecond)
	}

	if c.Fill.Concurrency < 1 {
		return errors.Newf("fill.concurrency must be >= 1, got %d", c.Fill.Concurrency)
	}
	if c.Fill.WatchDebounceMS < 0 {
		return errors.Newf("fill.watch_debounce_ms must be >= 0, got %d", c.Fill.WatchDebounceMS)
	}

	if c.Paths.Output == "" {
		return errors.New("paths.output cannot be empty")
	}

	if c.History.Enabled && c.History.Path == "" {
		return errors.WithHint(
			errors.New("history.path cannot be empty when history is enabled"),
			"set history.enabled = false to run without a ledger",
		)
	}

	return nil
}
