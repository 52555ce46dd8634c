//go:build !linux && !darwin && !windows

package native

func platformBackend() string {
	return BackendNone
}
