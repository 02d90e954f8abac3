package am

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/teranos/corrfill/errors"
)

// isolate points HOME and the working directory at a fresh temp dir so the
// cascade only sees files the test writes.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	SetExplicitPath("")
	Reset()
	t.Cleanup(func() {
		SetExplicitPath("")
		Reset()
	})
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func validConfig() Config {
	return Config{
		CDS:     CDSConfig{BaseURL: DefaultBaseURL, TimeoutSeconds: 10, RequestsPerSecond: 5},
		Paths:   PathsConfig{Template: "input.json", Output: "output.json"},
		Fill:    FillConfig{Concurrency: 4},
		History: HistoryConfig{Enabled: true, Path: "history.db"},
	}
}

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.CDS.BaseURL)
	assert.Equal(t, "contractnumber", cfg.CDS.ContractParam)
	assert.Equal(t, 10, cfg.CDS.TimeoutSeconds)
	assert.Equal(t, 5.0, cfg.CDS.RequestsPerSecond)
	assert.False(t, cfg.CDS.AllowPrivateHosts)
	assert.Equal(t, "input", cfg.Paths.InputDir)
	assert.Equal(t, "output.json", cfg.Paths.Output)
	assert.Equal(t, 4, cfg.Fill.Concurrency)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "everforest", cfg.Log.Theme)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty base url", func(c *Config) { c.CDS.BaseURL = "" }, "cds.base_url cannot be empty"},
		{"ftp base url", func(c *Config) { c.CDS.BaseURL = "ftp://host/x" }, "must be http or https"},
		{"no host", func(c *Config) { c.CDS.BaseURL = "https:///path" }, "has no host"},
		{"zero timeout", func(c *Config) { c.CDS.TimeoutSeconds = 0 }, "timeout_seconds must be > 0"},
		{"zero rate is unlimited", func(c *Config) { c.CDS.RequestsPerSecond = 0 }, ""},
		{"negative rate", func(c *Config) { c.CDS.RequestsPerSecond = -1 }, "requests_per_second must be >= 0"},
		{"zero concurrency", func(c *Config) { c.Fill.Concurrency = 0 }, "fill.concurrency must be >= 1"},
		{"negative debounce", func(c *Config) { c.Fill.WatchDebounceMS = -5 }, "watch_debounce_ms"},
		{"empty output", func(c *Config) { c.Paths.Output = "" }, "paths.output cannot be empty"},
		{"history without path", func(c *Config) { c.History.Path = "" }, "history.path cannot be empty"},
		{"history disabled without path", func(c *Config) {
			c.History.Enabled = false
			c.History.Path = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_HintOnMissingHistoryPath(t *testing.T) {
	cfg := validConfig()
	cfg.History.Path = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, errors.HintText(err), "history.enabled = false")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	writeFile(t, path, `
[cds]
base_url = "http://localhost:9000/Policy"
timeout_seconds = 3

[fill]
concurrency = 8
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/Policy", cfg.CDS.BaseURL)
	assert.Equal(t, 3, cfg.CDS.TimeoutSeconds)
	assert.Equal(t, 8, cfg.Fill.Concurrency)
	assert.Equal(t, "contractnumber", cfg.CDS.ContractParam, "defaults fill the gaps")

	_, err = LoadFromFile(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_CascadePrecedence(t *testing.T) {
	dir := isolate(t)

	writeFile(t, filepath.Join(dir, ".corrfill", "am.toml"), `
[cds]
timeout_seconds = 11
contract_param = "policyno"
`)
	writeFile(t, filepath.Join(dir, "am.toml"), `
[cds]
timeout_seconds = 22
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 22, cfg.CDS.TimeoutSeconds, "project beats user")
	assert.Equal(t, "policyno", cfg.CDS.ContractParam, "user beats defaults")

	t.Setenv("CORRFILL_CDS_TIMEOUT_SECONDS", "33")
	Reset()
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 33, cfg.CDS.TimeoutSeconds, "environment beats files")

	explicit := filepath.Join(dir, "explicit.toml")
	writeFile(t, explicit, "[cds]\ntimeout_seconds = 44\n")
	SetExplicitPath(explicit)
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 44, cfg.CDS.TimeoutSeconds, "--config beats environment")
}

func TestLoad_ProjectConfigFoundUpward(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "am.toml"), "[fill]\nconcurrency = 2\n")

	nested := filepath.Join(dir, "letters", "q3")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Fill.Concurrency)
}

func TestLoad_BrokenUserConfigIsSkipped(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".corrfill", "am.toml"), "[cds\nbroken")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.CDS.BaseURL)
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	dir := isolate(t)
	SetExplicitPath(filepath.Join(dir, "nope.toml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, errors.HintText(err), "--config")
}

func TestActiveConfigPath(t *testing.T) {
	dir := isolate(t)
	assert.Empty(t, ActiveConfigPath())

	user := filepath.Join(dir, ".corrfill", "am.toml")
	writeFile(t, user, "[fill]\nconcurrency = 2\n")
	assert.Equal(t, user, ActiveConfigPath())

	project := filepath.Join(dir, "am.toml")
	writeFile(t, project, "[fill]\nconcurrency = 3\n")
	assert.Equal(t, project, ActiveConfigPath(), "project beats user")

	explicit := filepath.Join(dir, "explicit.toml")
	SetExplicitPath(explicit)
	assert.Equal(t, explicit, ActiveConfigPath())

	files := CascadeFiles()
	require.NotEmpty(t, files)
	assert.Equal(t, SourceSystem, files[0].Source)
	assert.Equal(t, SourceExplicit, files[len(files)-1].Source)
}

func TestGet(t *testing.T) {
	isolate(t)

	v, err := Get("cds.contract_param")
	require.NoError(t, err)
	assert.Equal(t, "contractnumber", v)

	_, err = Get("cds.nonexistent")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestGetConfigIntrospection(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "am.toml"), "[fill]\nconcurrency = 2\n")
	t.Setenv("CORRFILL_LOG_THEME", "gruvbox")

	settings, err := GetConfigIntrospection()
	require.NoError(t, err)

	byKey := map[string]SettingInfo{}
	for _, s := range settings {
		byKey[s.Key] = s
	}

	assert.Equal(t, SourceProject, byKey["fill.concurrency"].Source)
	assert.Contains(t, byKey["fill.concurrency"].SourcePath, "am.toml")
	assert.Equal(t, SourceEnvironment, byKey["log.theme"].Source)
	assert.Equal(t, "gruvbox", byKey["log.theme"].Value)
	assert.Equal(t, SourceDefault, byKey["cds.base_url"].Source)

	for i := 1; i < len(settings); i++ {
		assert.Less(t, settings[i-1].Key, settings[i].Key, "settings must be sorted")
	}
}

func TestRender(t *testing.T) {
	settings := DefaultSettings()

	out, err := Render(settings, FormatTOML)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[cds]")
	assert.Contains(t, string(out), "contract_param = 'contractnumber'")

	out, err = Render(settings, FormatJSON)
	require.NoError(t, err)
	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "contractnumber", decoded["cds"]["contract_param"])

	out, err = Render(settings, FormatYAML)
	require.NoError(t, err)
	var fromYAML map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out, &fromYAML))
	assert.Equal(t, 4, fromYAML["fill"]["concurrency"])

	_, err = Render(settings, "ini")
	assert.True(t, errors.IsInvalidRequestError(err))
}

func TestWriteDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "am.toml")

	require.NoError(t, WriteDefaultConfig(path, false))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.CDS.BaseURL)

	err = WriteDefaultConfig(path, false)
	require.Error(t, err, "existing file kept without force")

	require.NoError(t, WriteDefaultConfig(path, true))
	assert.FileExists(t, path+".back1")

	require.NoError(t, WriteDefaultConfig(path, true))
	assert.FileExists(t, path+".back2")
}

func TestGetters(t *testing.T) {
	cfg := &Config{}

	assert.Equal(t, DefaultConcurrency, cfg.GetConcurrency())
	assert.Equal(t, "everforest", cfg.GetLogTheme())
	assert.Equal(t, "contractnumber", cfg.CDS.GetContractParam())
	assert.Equal(t, int64(10), int64(cfg.CDS.Timeout().Seconds()))

	t.Setenv("HOME", "/home/letters")
	cfg.History.Path = "~/.corrfill/h.db"
	assert.Equal(t, "/home/letters/.corrfill/h.db", cfg.GetHistoryPath())
	cfg.History.Path = "/var/lib/h.db"
	assert.Equal(t, "/var/lib/h.db", cfg.GetHistoryPath())
}

func TestConfigWatcher_Reload(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "am.toml")
	writeFile(t, path, "[fill]\nconcurrency = 3\n")

	cw, err := NewConfigWatcher(path)
	require.NoError(t, err)
	defer cw.Stop()

	var got *Config
	cw.OnReload(func(c *Config) error {
		got = c
		return errors.New("callback errors are logged, not returned")
	})

	require.NoError(t, cw.reload())
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Fill.Concurrency)

	writeFile(t, path, "[fill]\nconcurrency = 0\n")
	assert.Error(t, cw.reload(), "invalid config is rejected")
}

func TestConfigWatcher_OwnWrite(t *testing.T) {
	dir := t.TempDir()
	cw, err := NewConfigWatcher(filepath.Join(dir, "am.toml"))
	require.NoError(t, err)
	defer cw.Stop()

	cw.MarkOwnWrite()
	assert.True(t, cw.checkOwnWrite())
	assert.False(t, cw.checkOwnWrite(), "flag is cleared after one check")

	assert.True(t, isBackupFile("am.toml.back2"))
	assert.False(t, isBackupFile("am.toml"))
}
