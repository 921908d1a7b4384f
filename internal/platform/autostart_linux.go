//go:build linux

package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var errEmptyAppName = errors.New("app name is empty")

// EnableAutostart writes an XDG autostart entry that launches execPath.
func (service *platformService) EnableAutostart(appName, execPath string) error {
	if execPath == "" {
		return fmt.Errorf("enable autostart: exec path is empty")
	}
	entryPath, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	entry := desktopEntry{name: appName, exec: execPath, icon: slug(appName)}
	if err := os.MkdirAll(filepath.Dir(entryPath), 0o755); err != nil {
		return fmt.Errorf("enable autostart: create autostart dir: %w", err)
	}
	if err := os.WriteFile(entryPath, []byte(entry.String()), 0o644); err != nil {
		return fmt.Errorf("enable autostart: write desktop entry: %w", err)
	}
	return nil
}

// DisableAutostart removes the entry. A missing entry is not an error.
func (service *platformService) DisableAutostart(appName string) error {
	entryPath, err := service.desktopEntryPath(appName)
	if err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	if err := os.Remove(entryPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("disable autostart: remove desktop entry: %w", err)
	}
	return nil
}

// AutostartEnabled reports whether the entry exists.
func (service *platformService) AutostartEnabled(appName string) bool {
	entryPath, err := service.desktopEntryPath(appName)
	if err != nil {
		return false
	}
	_, err = os.Stat(entryPath)
	return err == nil
}

func (service *platformService) desktopEntryPath(appName string) (string, error) {
	if strings.TrimSpace(appName) == "" {
		return "", errEmptyAppName
	}
	configDir, err := service.GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "autostart", slug(appName)+".desktop"), nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}

// slug lowercases the name and replaces spaces for use in file names.
func slug(appName string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(appName)), " ", "-")
}

// desktopEntry is the subset of the freedesktop entry format Tomato writes.
type desktopEntry struct {
	name string
	exec string
	icon string
}

func (entry desktopEntry) String() string {
	exec := entry.exec
	if strings.ContainsRune(exec, ' ') && !strings.HasPrefix(exec, `"`) {
		exec = `"` + exec + `"`
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	fields := [][2]string{
		{"Type", "Application"},
		{"Name", entry.name},
		{"Comment", "Focus and rest timer"},
		{"Exec", exec},
		{"Icon", entry.icon},
		{"Categories", "Utility;"},
		{"Terminal", "false"},
		{"X-GNOME-Autostart-enabled", "true"},
	}
	for _, field := range fields {
		fmt.Fprintf(&b, "%s=%s\n", field[0], field[1])
	}
	return b.String()
}
