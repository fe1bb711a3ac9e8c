package telemetry

import "strings"

// devicePathMarker separates the device-scoped suffix from whatever prefix
// the gateway firmware puts in front of it (e.g. /sys/devices/..., /v1/devices/...).
const devicePathMarker = "/devices/"

// paddedIndexWidth is the minimum width of the device_index tag value.
const paddedIndexWidth = 2

// DevicePath is the parsed identity of a device-scoped raw field.
type DevicePath struct {
	// Category is the device kind reported by the gateway (e.g. "inverter").
	Category string

	// Index is the gateway's slot label for the device. It looks numeric but
	// is treated as an opaque label.
	Index string

	// Field is the bare field name, used for registry lookup and as the
	// series name.
	Field string
}

// ParseDevicePath decodes a flat identifier of the shape
// .../devices/<category>/<index>/<field> into a DevicePath.
//
// Identifiers not matching this shape are not device-scoped; the second
// return value is false and the caller treats the field as system-wide.
// Pure and deterministic, no failure mode.
func ParseDevicePath(identifier string) (DevicePath, bool) {
	i := strings.Index(identifier, devicePathMarker)
	if i < 0 {
		return DevicePath{}, false
	}

	rest := identifier[i+len(devicePathMarker):]
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return DevicePath{}, false
	}
	for _, p := range parts {
		if p == "" {
			return DevicePath{}, false
		}
	}

	return DevicePath{
		Category: parts[0],
		Index:    parts[1],
		Field:    parts[2],
	}, true
}

// PaddedIndex returns the device index zero-padded to two digits, the form
// used for the device_index tag ("7" becomes "07", "11" stays "11").
func (p DevicePath) PaddedIndex() string {
	return padIndex(p.Index)
}

func padIndex(index string) string {
	for len(index) < paddedIndexWidth {
		index = "0" + index
	}
	return index
}
