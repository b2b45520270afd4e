//go:build !linux

package tune

// TotalMemory isn't supported on this platform, so it always reports that the total is unknown.
func TotalMemory() (uint64, bool) {
	return 0, false
}
