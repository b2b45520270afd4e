package tune

import "golang.org/x/sys/unix"

// TotalMemory returns the total physical memory of the machine in bytes.
func TotalMemory() (uint64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return uint64(info.Totalram) * unit, true
}
