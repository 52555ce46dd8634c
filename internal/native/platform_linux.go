//go:build linux

package native

import "os"

func platformBackend() string {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") != "" {
		return BackendDBus
	}
	if toolAvailable("notify-send") && hasDisplay() {
		return BackendNotifySend
	}
	return BackendNone
}
