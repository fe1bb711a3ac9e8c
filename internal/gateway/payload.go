package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/solwatch/solwatch-core/internal/telemetry"
)

// decodeFields parses a current-generation payload: one flat JSON object of
// identifier/value pairs. Raw values are defined as strings, but some
// firmware versions emit JSON numbers or booleans; those are stringified
// losslessly before classification. Nested values are skipped with no error.
//
// Fields are returned in identifier order so downstream grouping and logging
// are deterministic.
func decodeFields(data []byte) ([]telemetry.RawField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	names := make([]string, 0, len(payload))
	for name := range payload {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]telemetry.RawField, 0, len(payload))
	for _, name := range names {
		value, ok := stringifyScalar(payload[name])
		if !ok {
			continue
		}
		fields = append(fields, telemetry.RawField{Name: name, Value: value})
	}

	return fields, nil
}

// legacyListing is the shape of the legacy /devices.json document.
type legacyListing struct {
	Devices []map[string]any `json:"devices"`
}

// decodeLegacyDevices parses the legacy device listing: a single JSON
// document with a flat devices list, each device a flat key/value map.
func decodeLegacyDevices(data []byte) ([]map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var listing legacyListing
	if err := dec.Decode(&listing); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadPayload, err)
	}

	devices := make([]map[string]string, 0, len(listing.Devices))
	for _, entry := range listing.Devices {
		device := make(map[string]string, len(entry))
		for name, v := range entry {
			value, ok := stringifyScalar(v)
			if !ok {
				continue
			}
			device[name] = value
		}
		devices = append(devices, device)
	}

	return devices, nil
}

// stringifyScalar converts a decoded JSON scalar to its raw string form.
// json.Number preserves the wire representation exactly. Nulls, arrays and
// objects report false.
func stringifyScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
