package platform

import (
	"errors"
	"fmt"
	"os"
)

// ErrAutostartUnsupported indicates the platform has no autostart integration.
var ErrAutostartUnsupported = errors.New("autostart unsupported")

// Service defines OS-specific helpers needed by the application.
type Service interface {
	GetConfigDir() (string, error)
	EnableAutostart(appName, execPath string) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) bool
}

type platformService struct {
	// configDir overrides the user config directory when set.
	configDir string
}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// GetConfigDir returns the OS-standard configuration directory.
func (service *platformService) GetConfigDir() (string, error) {
	if service.configDir != "" {
		return service.configDir, nil
	}
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("get config dir: %w", err)
		}
		return "", fmt.Errorf("get config dir: %w", homeErr)
	}

	return fallbackConfigDir(homeDir), nil
}

// SyncAutostart makes the login entry for the running executable match enabled.
func SyncAutostart(service Service, appName string, enabled bool) error {
	if !enabled {
		if !service.AutostartEnabled(appName) {
			return nil
		}
		return service.DisableAutostart(appName)
	}

	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	return service.EnableAutostart(appName, execPath)
}
