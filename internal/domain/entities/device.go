package entities

import "strings"

// DeviceList is an ordered list of device serials reported by the debug bridge
type DeviceList []string

// ParseDeviceList scrapes "adb devices" output into device serials.
// A line counts when its first tab-separated field is longer than five
// characters and contains no space.
func ParseDeviceList(text string) DeviceList {
	devices := DeviceList{}
	for _, line := range strings.Split(text, "\n") {
		serial := strings.SplitN(line, "\t", 2)[0]
		if len(serial) > 5 && !strings.Contains(serial, " ") {
			devices = append(devices, serial)
		}
	}
	return devices
}

// Contains reports whether serial is in the list
func (d DeviceList) Contains(serial string) bool {
	for _, s := range d {
		if s == serial {
			return true
		}
	}
	return false
}

// Empty reports whether no devices were found
func (d DeviceList) Empty() bool {
	return len(d) == 0
}
