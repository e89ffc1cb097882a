/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable YAML configuration with
// environment overrides. The remote API token never touches disk; it lives
// in the OS keyring.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type GeneralConfig struct {
	DevMode        bool `yaml:"dev_mode"`
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	// Token is not stored on disk; it lives in the OS keyring.
}

type ServerConfig struct {
	Addr          string `yaml:"addr"`
	DBURL         string `yaml:"db_url"`   // Postgres blob store when set
	BlobDir       string `yaml:"blob_dir"` // filesystem blob store otherwise
	PublicBaseURL string `yaml:"public_base_url"`
}

type StorageConfig struct {
	CacheDir  string `yaml:"cache_dir"`
	StaticDir string `yaml:"static_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Backend       BackendConfig `yaml:"backend"`
	Server        ServerConfig  `yaml:"server"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DevMode: false, TelemetryOptIn: false},
		Backend:       BackendConfig{BaseURL: "http://localhost:8080"},
		Server:        ServerConfig{Addr: ":8080", BlobDir: filepath.Join(userDataDir(), "blobs")},
		Storage:       StorageConfig{CacheDir: filepath.Join(userDataDir(), "cache")},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvDevMode        = "SC_DEV_MODE"
	EnvTelemetryOptIn = "SC_TELEMETRY_OPT_IN"
	EnvBackendURL     = "SC_BACKEND_URL"
	EnvServerAddr     = "SC_ADDR"
	EnvServerDBURL    = "DATABASE_URL"
	EnvServerBlobDir  = "SC_BLOB_DIR"
	EnvPublicBaseURL  = "SC_PUBLIC_BASE_URL"
	EnvCacheDir       = "SC_CACHE_DIR"
	EnvStaticDir      = "SC_STATIC_DIR"
	EnvLogLevel       = "SC_LOG_LEVEL"
	EnvLogFormat      = "SC_LOG_FORMAT"
	EnvLogSource      = "SC_LOG_SOURCE"
	EnvLogFile        = "SC_LOG_FILE"
)

// Service/key for the OS keyring.
const (
	keyringService = "SiteCanvas"
	keyringToken   = "backend_token"
)

// TokenStore abstracts the keyring so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// SetTokenStore replaces the keyring backend; tests use this.
func SetTokenStore(ts TokenStore) { tokenStore = ts }

func userDataDir() string {
	switch runtime.GOOS {
	case "windows":
		base := os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		return filepath.Join(base, "SiteCanvas")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "SiteCanvas")
	default:
		return filepath.Join(os.Getenv("HOME"), ".local", "share", "sitecanvas")
	}
}

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "SiteCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "SiteCanvas")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "sitecanvas")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and
// merges environment overrides. The backend token comes from the keyring
// and is returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		return tokenStore.Set(keyringService, keyringToken, token)
	}
	return nil
}

// ClearToken removes the stored backend token.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans copy directly so user preferences persist
	dst.General.DevMode = src.General.DevMode
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if src.Backend.BaseURL != "" {
		dst.Backend.BaseURL = src.Backend.BaseURL
	}
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Server.DBURL != "" {
		dst.Server.DBURL = src.Server.DBURL
	}
	if src.Server.BlobDir != "" {
		dst.Server.BlobDir = src.Server.BlobDir
	}
	if src.Server.PublicBaseURL != "" {
		dst.Server.PublicBaseURL = src.Server.PublicBaseURL
	}
	if src.Storage.CacheDir != "" {
		dst.Storage.CacheDir = src.Storage.CacheDir
	}
	if src.Storage.StaticDir != "" {
		dst.Storage.StaticDir = src.Storage.StaticDir
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	set := func(dst *string, env string) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, env string) {
		if v := strings.ToLower(strings.TrimSpace(os.Getenv(env))); v != "" {
			*dst = v == "1" || v == "true" || v == "on" || v == "yes"
		}
	}
	setBool(&cfg.General.DevMode, EnvDevMode)
	setBool(&cfg.General.TelemetryOptIn, EnvTelemetryOptIn)
	set(&cfg.Backend.BaseURL, EnvBackendURL)
	set(&cfg.Server.Addr, EnvServerAddr)
	set(&cfg.Server.DBURL, EnvServerDBURL)
	set(&cfg.Server.BlobDir, EnvServerBlobDir)
	set(&cfg.Server.PublicBaseURL, EnvPublicBaseURL)
	set(&cfg.Storage.CacheDir, EnvCacheDir)
	set(&cfg.Storage.StaticDir, EnvStaticDir)
	set(&cfg.Logging.Level, EnvLogLevel)
	set(&cfg.Logging.Format, EnvLogFormat)
	setBool(&cfg.Logging.Source, EnvLogSource)
	set(&cfg.Logging.File, EnvLogFile)
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
}
