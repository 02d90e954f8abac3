// Package am ("am" as in "I am") holds corrfill's configuration: where
// records come from, where letters are read and written, and how runs are
// logged and remembered.
package am

// Config represents the corrfill configuration
type Config struct {
	CDS     CDSConfig     `mapstructure:"cds"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Merge   MergeConfig   `mapstructure:"merge"`
	Fill    FillConfig    `mapstructure:"fill"`
	History HistoryConfig `mapstructure:"history"`
	Log     LogConfig     `mapstructure:"log"`
}

// CDSConfig configures the correspondence data service the records come from
type CDSConfig struct {
	BaseURL           string  `mapstructure:"base_url"`            // Policy endpoint, queried with ?{contract_param}=N
	ContractParam     string  `mapstructure:"contract_param"`      // Query parameter carrying the contract number
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`     // Per-request timeout
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // Client-side throttle (0 = unlimited)
	AllowPrivateHosts bool    `mapstructure:"allow_private_hosts"` // Permit loopback/private targets (local stubs)
}

// PathsConfig names the default template and output locations
type PathsConfig struct {
	InputDir  string `mapstructure:"input_dir"`  // Fragment directory for merge
	OutputDir string `mapstructure:"output_dir"` // Where fill and merge write when given a bare file name
	Template  string `mapstructure:"template"`   // Template reference (local path or go-getter URL)
	Output    string `mapstructure:"output"`     // Output file; "{contract}" expands per contract
}

// MergeConfig configures LetterData assembly
type MergeConfig struct {
	Manifest string `mapstructure:"manifest"` // Optional TOML manifest naming fragment files
}

// FillConfig configures batch fills
type FillConfig struct {
	Concurrency     int `mapstructure:"concurrency"`       // Fills in flight for a batch
	WatchDebounceMS int `mapstructure:"watch_debounce_ms"` // Quiet period before a watched template is re-run
}

// HistoryConfig configures the run ledger
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"` // SQLite file; "~" expands to the home directory
}

// LogConfig configures log output
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`  // JSON lines instead of the console encoder
	Theme string `mapstructure:"theme"` // Console color theme: everforest, gruvbox
}

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
