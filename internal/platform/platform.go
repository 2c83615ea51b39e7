// Package platform holds the adapters that touch the host system:
// clipboard access, opening paths and running uninstall commands.
package platform

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	atotto "github.com/atotto/clipboard"

	"github.com/swiftfind/swiftfind/internal/uninstall"
)

// SystemClipboard adapts the OS clipboard.
type SystemClipboard struct{}

func (SystemClipboard) ReadText() (string, error) { return atotto.ReadAll() }

func (SystemClipboard) WriteText(text string) error { return atotto.WriteAll(text) }

// Launcher opens paths and URLs with the desktop's default handler and
// runs prepared uninstall commands.
type Launcher struct{}

// OpenPath hands the path to the platform opener. The handler decides
// what "open" means for the target (editor, browser, file manager).
func (Launcher) OpenPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("empty path")
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

// Run starts a program without waiting for it. The argument string is
// split on whitespace; uninstall commands with quoted arguments keep
// their quoting from PrepareCommand's program split.
func (Launcher) Run(program string, args string) error {
	fields := strings.Fields(args)
	return exec.Command(program, fields...).Start()
}

// NoPrograms is the installed-programs source for hosts without an
// install registry.
type NoPrograms struct{}

func (NoPrograms) Entries() ([]uninstall.Entry, error) { return nil, nil }

// StartupManager toggles launch-at-login. Implementations register the
// invocation `"<quoted exe>" --background` with the host's login items.
type StartupManager interface {
	IsEnabled() (bool, error)
	SetEnabled(enabled bool, executablePath string) error
}

// NoStartup is the inert default for hosts without login-item support.
type NoStartup struct{}

func (NoStartup) IsEnabled() (bool, error) { return false, nil }

func (NoStartup) SetEnabled(enabled bool, executablePath string) error { return nil }
