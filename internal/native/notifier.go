// Package native talks to the desktop notification facility of the host
// operating system and reports how the user answered.
//
// Every backend blocks until the user acts on the notification, the
// notification times out, or the context ends. Backends that cannot capture
// typed text report the clicked button instead.
package native

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"
	"notify_relay/internal/config"
	"notify_relay/internal/domain"
	"notify_relay/internal/model"
)

const (
	BackendAuto       = "auto"
	BackendDBus       = "dbus"
	BackendNotifySend = "notify-send"
	BackendOsascript  = "osascript"
	BackendPowerShell = "powershell"
	BackendNone       = "none"
)

// Response is what the user did with a notification. Value is the typed
// reply, the acknowledgement label, or empty.
type Response struct {
	Outcome string
	Value   string
}

type Notifier interface {
	Notify(ctx context.Context, opts model.Options) (Response, error)
	Name() string
}

// New picks the backend named by cfg.NotifyBackend, resolving "auto" against
// the current platform.
func New(cfg *config.Config, logger *zap.Logger) (Notifier, error) {
	backend := cfg.NotifyBackend
	if backend == "" || backend == BackendAuto {
		backend = platformBackend()
	}

	var n Notifier
	switch backend {
	case BackendDBus:
		n = newDBusNotifier(logger)
	case BackendNotifySend:
		n = newNotifySendNotifier(execOutput)
	case BackendOsascript:
		n = newOsascriptNotifier(execOutput)
	case BackendPowerShell:
		n = newPowerShellNotifier(execOutput)
	case BackendNone:
		n = noopNotifier{}
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownBackend, backend)
	}
	logger.Info("native notifier selected", zap.String("backend", n.Name()))
	return n, nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, model.Options) (Response, error) {
	return Response{}, domain.ErrNotifierUnavailable
}

func (noopNotifier) Name() string { return BackendNone }

// runFunc runs a command and returns its stdout.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
