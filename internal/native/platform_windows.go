//go:build windows

package native

func platformBackend() string {
	if toolAvailable("powershell") {
		return BackendPowerShell
	}
	return BackendNone
}
