package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

const (
	envAPIKey    = "LUNCHPICK_KAKAO_REST_API_KEY"
	envBaseURL   = "LUNCHPICK_KAKAO_BASE_URL"
	envLocateURL = "LUNCHPICK_LOCATE_URL"

	configDirName  = "lunchpick"
	configFileName = "config.json"
)

// GlobalConfig is the per-user config.json. Empty fields fall back to
// environment variables and built-in defaults.
type GlobalConfig struct {
	KakaoRESTAPIKey string  `json:"kakao_rest_api_key,omitempty"`
	KakaoBaseURL    string  `json:"kakao_base_url,omitempty"`
	LocateURL       string  `json:"locate_url,omitempty"`
	RadiusMeters    float64 `json:"radius_meters,omitempty"`
}

func (c *GlobalConfig) isEmpty() bool {
	return c == nil || *c == GlobalConfig{}
}

// Swapped in tests.
var (
	getConfigDirFunc  = defaultGetConfigDir
	getConfigPathFunc = defaultGetConfigPath
)

func defaultGetConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(base, configDirName), nil
}

func defaultGetConfigPath() (string, error) {
	dir, err := getConfigDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// GetConfigDir returns the platform-specific configuration directory
func GetConfigDir() (string, error) {
	return getConfigDirFunc()
}

// GetConfigPath returns the full path to config.json
func GetConfigPath() (string, error) {
	return getConfigPathFunc()
}

// LoadGlobalConfig returns a nil config without error when the file does not
// exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveGlobalConfig replaces config.json atomically with mode 0600.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("config cannot be nil")
	}

	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, configFileName+".*")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// UpdateGlobalConfig loads config.json, applies fn and saves the result. A
// config left empty by fn removes the file.
func UpdateGlobalConfig(fn func(*GlobalConfig)) error {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &GlobalConfig{}
	}

	fn(cfg)
	if cfg.isEmpty() {
		return DeleteGlobalConfig()
	}
	return SaveGlobalConfig(cfg)
}

// DeleteGlobalConfig removes config.json. A missing file is not an error.
func DeleteGlobalConfig() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

var restAPIKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// IsValidAPIKey checks the Kakao REST API key format: 32 hex chars.
func IsValidAPIKey(key string) bool {
	return restAPIKeyPattern.MatchString(key)
}

// CredentialSource represents where credentials came from
type CredentialSource string

const (
	SourceFlag         CredentialSource = "flag"
	SourceEnv          CredentialSource = "env"
	SourceGlobalConfig CredentialSource = "global_config"
	SourceNone         CredentialSource = "none"
)

// Settings is the resolved CLI configuration.
type Settings struct {
	APIKey       string
	Source       CredentialSource
	BaseURL      string
	LocateURL    string
	RadiusMeters float64
}

// ResolveSettings applies the cascade flag → env → config.json to every
// setting. Unset values stay zero so callers keep their own defaults.
func ResolveSettings(flagAPIKey string) (Settings, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return Settings{}, err
	}
	if cfg == nil {
		cfg = &GlobalConfig{}
	}

	s := Settings{
		Source:       SourceNone,
		BaseURL:      firstNonEmpty(os.Getenv(envBaseURL), cfg.KakaoBaseURL),
		LocateURL:    firstNonEmpty(os.Getenv(envLocateURL), cfg.LocateURL),
		RadiusMeters: cfg.RadiusMeters,
	}

	switch {
	case flagAPIKey != "":
		s.APIKey, s.Source = flagAPIKey, SourceFlag
	case os.Getenv(envAPIKey) != "":
		s.APIKey, s.Source = os.Getenv(envAPIKey), SourceEnv
	case cfg.KakaoRESTAPIKey != "":
		s.APIKey, s.Source = cfg.KakaoRESTAPIKey, SourceGlobalConfig
	}
	return s, nil
}

// GetCredentialSource returns the REST API key and where it came from. An
// unreadable config.json counts as no stored key.
func GetCredentialSource(flagAPIKey string) (CredentialSource, string) {
	s, err := ResolveSettings(flagAPIKey)
	if err != nil {
		if flagAPIKey != "" {
			return SourceFlag, flagAPIKey
		}
		if key := os.Getenv(envAPIKey); key != "" {
			return SourceEnv, key
		}
		return SourceNone, ""
	}
	return s.Source, s.APIKey
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
