package internal

import (
	"github.com/swiftfind/swiftfind/internal/config"
	"github.com/swiftfind/swiftfind/internal/platform"
	"github.com/swiftfind/swiftfind/internal/uninstall"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *config.Config
	programs uninstall.Source
	startup  platform.StartupManager
}

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithProgramsSource overrides the installed-programs source used by
// uninstall actions. Without it the host default applies.
func WithProgramsSource(src uninstall.Source) Option {
	return func(a *application) {
		a.programs = src
	}
}

// WithStartupManager overrides the launch-at-login port. Without it the
// host default applies.
func WithStartupManager(mgr platform.StartupManager) Option {
	return func(a *application) {
		a.startup = mgr
	}
}

func (a *application) programsSource() uninstall.Source {
	if a.programs != nil {
		return a.programs
	}
	return platform.NoPrograms{}
}

func (a *application) startupManager() platform.StartupManager {
	if a.startup != nil {
		return a.startup
	}
	return platform.NoStartup{}
}
