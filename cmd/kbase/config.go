// Config loading for the kbase CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kbase/internal/logging"
	"github.com/mesh-intelligence/kbase/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// Config keys.
	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyLogLevel = "log_level"
	cfgKeyListen   = "listen"

	defaultBackend = types.BackendSQLite
	defaultListen  = "127.0.0.1:8080"
)

// configFile is the structure written to config.yaml by init.
type configFile struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level"`
	Listen   string `yaml:"listen"`
}

// defaultConfig returns the values written to a fresh config.yaml.
func defaultConfig() configFile {
	return configFile{
		Backend:  defaultBackend,
		LogLevel: logging.DefaultLevel,
		Listen:   defaultListen,
	}
}

// loadConfig reads config.yaml from configDir using Viper. A missing
// config.yaml is not an error; defaults apply. KBASE_BACKEND and
// KBASE_LOG_LEVEL override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, logging.DefaultLevel)
	v.SetDefault(cfgKeyListen, defaultListen)
	if err := v.BindEnv(cfgKeyBackend, "KBASE_BACKEND"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(cfgKeyLogLevel, "KBASE_LOG_LEVEL"); err != nil {
		return nil, err
	}
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. An existing file is left untouched.
func writeConfigIfMissing(configDir string, cfg configFile) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# kbase configuration\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
