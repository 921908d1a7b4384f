//go:build !linux

package platform

import "path/filepath"

func (service *platformService) EnableAutostart(appName, execPath string) error {
	return ErrAutostartUnsupported
}

func (service *platformService) DisableAutostart(appName string) error {
	return ErrAutostartUnsupported
}

func (service *platformService) AutostartEnabled(appName string) bool {
	return false
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
