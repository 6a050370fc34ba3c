// Package paths resolves where kbase keeps its configuration and its
// database. Each directory follows a precedence chain ending in either a
// directory under the working directory (when one already exists there) or
// the platform's per-user location.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Directory names looked up under the working directory.
const (
	LocalConfigDirName = ".kbase"
	LocalDataDirName   = ".kbase-db"
)

// appDirName is the per-user directory name on every platform.
const appDirName = "kbase"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "KBASE_CONFIG_DIR"
	EnvDataDir   = "KBASE_DATA_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// UserConfigDir returns the per-user configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/kbase (fallback ~/.config/kbase)
// macOS:   ~/Library/Application Support/kbase
// Windows: %APPDATA%/kbase
func UserConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// UserDataDir returns the per-user data directory.
//
// Linux:   $XDG_DATA_HOME/kbase (fallback ~/.local/share/kbase)
// macOS and Windows: same as UserConfigDir.
func UserDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, homeRel string) (string, error) {
	if platformDir.goos != "linux" {
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, appDirName), nil
	}
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, appDirName), nil
}

// ResolveConfigDir returns the configuration directory:
// flag > KBASE_CONFIG_DIR > ./.kbase if it exists > UserConfigDir.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	if dir, ok, err := localDir(LocalConfigDirName); err != nil || ok {
		return dir, err
	}
	return UserConfigDir()
}

// ResolveDataDir returns the data directory:
// flag > configValue (data_dir in config.yaml) > KBASE_DATA_DIR >
// ./.kbase-db if it exists > UserDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, v := range []string{flag, configValue, os.Getenv(EnvDataDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	if dir, ok, err := localDir(LocalDataDirName); err != nil || ok {
		return dir, err
	}
	return UserDataDir()
}

// localDir reports whether name exists as a directory under the working
// directory.
func localDir(name string) (string, bool, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false, err
	}
	dir := filepath.Join(cwd, name)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false, nil
	}
	return dir, true, nil
}
