// =================================================================
//
// Work of the U.S. Department of Defense, Defense Digital Service.
// Released as open source under the MIT License.  See LICENSE file.
//
// =================================================================

package appdata

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var (
	ErrMissingAppName = errors.New("application name is missing")
)

// Environment is the view of the process environment used to find the application data directories.
type Environment struct {
	GOOS        string
	Getenv      func(key string) string
	UserHomeDir func() (string, error)
}

// Dirs returns the local and roaming application data directories for the current user.
func Dirs(appName string) (string, string, error) {
	return Environment{
		GOOS:        runtime.GOOS,
		Getenv:      os.Getenv,
		UserHomeDir: os.UserHomeDir,
	}.Dirs(appName)
}

func (e Environment) dir(key string, fallback ...string) (string, error) {
	if d := e.Getenv(key); len(d) > 0 {
		return d, nil
	}
	home, err := e.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}

// Dirs returns the local and roaming application data directories.
//
//   - windows: %LOCALAPPDATA%\app and %APPDATA%\app
//   - darwin: ~/Library/Application Support/app and ~/Library/Preferences/app
//   - others: $XDG_DATA_HOME/app and $XDG_CONFIG_HOME/app
func (e Environment) Dirs(appName string) (string, string, error) {
	if len(appName) == 0 {
		return "", "", ErrMissingAppName
	}
	switch e.GOOS {
	case "windows":
		local, err := e.dir("LOCALAPPDATA", "AppData", "Local")
		if err != nil {
			return "", "", err
		}
		roaming, err := e.dir("APPDATA", "AppData", "Roaming")
		if err != nil {
			return "", "", err
		}
		return filepath.Join(local, appName), filepath.Join(roaming, appName), nil
	case "darwin", "ios":
		home, err := e.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("error finding home directory: %w", err)
		}
		library := filepath.Join(home, "Library")
		return filepath.Join(library, "Application Support", appName), filepath.Join(library, "Preferences", appName), nil
	}
	local, err := e.dir("XDG_DATA_HOME", ".local", "share")
	if err != nil {
		return "", "", err
	}
	roaming, err := e.dir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", "", err
	}
	return filepath.Join(local, appName), filepath.Join(roaming, appName), nil
}
