package am

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/teranos/corrfill/errors"
)

// EnvPrefix is prepended to every environment override, e.g.
// CORRFILL_CDS_BASE_URL for cds.base_url.
const EnvPrefix = "CORRFILL"

var (
	mu            sync.Mutex
	globalConfig  *Config
	viperInstance *viper.Viper
	explicitPath  string

	// ConfigSources records which file each key was last merged from.
	// Keys absent here come from defaults or the environment.
	ConfigSources = map[string]SourceInfo{}
)

// SetExplicitPath makes Load merge path on top of the cascade, above
// environment variables. Used for --config.
func SetExplicitPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	explicitPath = path
	globalConfig = nil
	viperInstance = nil
}

// Load reads the corrfill configuration using Viper
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	v, err := initViper()
	if err != nil {
		return nil, err
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() (*viper.Viper, error) {
	mu.Lock()
	defer mu.Unlock()
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path on top of the
// defaults, ignoring the cascade and the environment
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, errors.Wrapf(err, "config file %s", configPath)
	}
	return config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults.
// Callers hold mu.
func initViper() (*viper.Viper, error) {
	if viperInstance != nil {
		return viperInstance, nil
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindEnvVars(v)

	SetDefaults(v)

	// Files merge at the config layer: system -> user -> project, all below env vars
	ConfigSources = map[string]SourceInfo{}
	mergeConfigFiles(v)

	// --config beats the environment, so it goes into the override layer
	if explicitPath != "" {
		if err := overrideFromFile(v, explicitPath); err != nil {
			return nil, err
		}
	}

	viperInstance = v
	return v, nil
}

// findProjectConfig searches for am.toml by walking up the directory tree
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		amPath := filepath.Join(dir, "am.toml")
		if _, err := os.Stat(amPath); err == nil {
			return amPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// UserConfigDir returns ~/.corrfill
func UserConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".corrfill")
}

// cascade lists the config files in precedence order, lowest first
func cascade() []SourceInfo {
	files := []SourceInfo{
		{Source: SourceSystem, Path: "/etc/corrfill/am.toml"},
	}
	if dir := UserConfigDir(); dir != "" {
		files = append(files, SourceInfo{Source: SourceUser, Path: filepath.Join(dir, "am.toml")})
	}
	if project := findProjectConfig(); project != "" {
		files = append(files, SourceInfo{Source: SourceProject, Path: project})
	}
	return files
}

// ActiveConfigPath returns the highest-precedence config file that exists:
// the --config file if set, otherwise the last existing file of the
// cascade. "" means only defaults and the environment apply.
func ActiveConfigPath() string {
	mu.Lock()
	path := explicitPath
	mu.Unlock()
	if path != "" {
		return path
	}

	files := cascade()
	for i := len(files) - 1; i >= 0; i-- {
		if _, err := os.Stat(files[i].Path); err == nil {
			return files[i].Path
		}
	}
	return ""
}

// CascadeFiles lists the config files consulted, lowest precedence first,
// whether or not they exist.
func CascadeFiles() []SourceInfo {
	files := cascade()
	mu.Lock()
	defer mu.Unlock()
	if explicitPath != "" {
		files = append(files, SourceInfo{Source: SourceExplicit, Path: explicitPath})
	}
	return files
}

// mergeConfigFiles merges the cascade into v. Unreadable files are skipped;
// a broken user config should not stop a fill that passes everything as flags.
func mergeConfigFiles(v *viper.Viper) {
	for _, file := range cascade() {
		if _, err := os.Stat(file.Path); err != nil {
			continue
		}

		tempViper := viper.New()
		tempViper.SetConfigFile(file.Path)
		tempViper.SetConfigType("toml")
		if err := tempViper.ReadInConfig(); err != nil {
			continue
		}

		if err := v.MergeConfigMap(tempViper.AllSettings()); err != nil {
			continue
		}
		for _, key := range tempViper.AllKeys() {
			ConfigSources[key] = file
		}
	}
}

// overrideFromFile applies every key in path through v.Set
func overrideFromFile(v *viper.Viper, path string) error {
	tempViper := viper.New()
	tempViper.SetConfigFile(path)
	tempViper.SetConfigType("toml")
	if err := tempViper.ReadInConfig(); err != nil {
		return errors.WithHint(
			errors.Wrapf(err, "failed to read config file %s", path),
			"check the --config path",
		)
	}

	for _, key := range tempViper.AllKeys() {
		v.Set(key, tempViper.Get(key))
		ConfigSources[key] = SourceInfo{Source: SourceExplicit, Path: path}
	}
	return nil
}

// Get returns a configuration value using dot notation
func Get(key string) (interface{}, error) {
	v, err := GetViper()
	if err != nil {
		return nil, err
	}
	if !v.IsSet(key) {
		return nil, errors.NewNotFoundError("config key %q", key)
	}
	return v.Get(key), nil
}

// ExpandHome replaces a leading "~" with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
