//go:build darwin

package native

func platformBackend() string {
	if toolAvailable("osascript") {
		return BackendOsascript
	}
	return BackendNone
}
