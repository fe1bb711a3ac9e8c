package telemetry

import (
	"fmt"
	"testing"
)

func TestParseDevicePath(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       DevicePath
		wantOK     bool
	}{
		{
			name:       "current firmware device field",
			identifier: "/sys/devices/inverter/11/p3phsumKw",
			want:       DevicePath{Category: "inverter", Index: "11", Field: "p3phsumKw"},
			wantOK:     true,
		},
		{
			name:       "single digit index",
			identifier: "/sys/devices/meter/7/freqHz",
			want:       DevicePath{Category: "meter", Index: "7", Field: "freqHz"},
			wantOK:     true,
		},
		{
			name:       "alternate prefix",
			identifier: "/v1/devices/battery/02/socPct",
			want:       DevicePath{Category: "battery", Index: "02", Field: "socPct"},
			wantOK:     true,
		},
		{
			name:       "system livedata field is not device scoped",
			identifier: "/sys/livedata/pv_p",
			wantOK:     false,
		},
		{
			name:       "plain camel case field",
			identifier: "p3phsumKw",
			wantOK:     false,
		},
		{
			name:       "legacy all caps field",
			identifier: "SERIALNUMBER",
			wantOK:     false,
		},
		{
			name:       "too few segments after marker",
			identifier: "/sys/devices/inverter/11",
			wantOK:     false,
		},
		{
			name:       "too many segments after marker",
			identifier: "/sys/devices/inverter/11/sub/field",
			wantOK:     false,
		},
		{
			name:       "empty segment",
			identifier: "/sys/devices//11/field",
			wantOK:     false,
		},
		{
			name:       "empty identifier",
			identifier: "",
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDevicePath(tt.identifier)
			if ok != tt.wantOK {
				t.Fatalf("ParseDevicePath(%q) ok = %v, want %v", tt.identifier, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParseDevicePath(%q) = %+v, want %+v", tt.identifier, got, tt.want)
			}
		})
	}
}

// TestParseDevicePath_RoundTrip verifies parse recovers exactly the parts
// used to construct a device-scoped identifier.
func TestParseDevicePath_RoundTrip(t *testing.T) {
	categories := []string{"inverter", "meter", "battery"}
	indices := []string{"0", "7", "11", "42"}
	fields := []string{"sn", "p3phsumKw", "eTotalKwh"}

	for _, cat := range categories {
		for _, idx := range indices {
			for _, field := range fields {
				identifier := fmt.Sprintf("/sys/devices/%s/%s/%s", cat, idx, field)
				got, ok := ParseDevicePath(identifier)
				if !ok {
					t.Fatalf("ParseDevicePath(%q) ok = false, want true", identifier)
				}
				want := DevicePath{Category: cat, Index: idx, Field: field}
				if got != want {
					t.Errorf("ParseDevicePath(%q) = %+v, want %+v", identifier, got, want)
				}
			}
		}
	}
}

func TestDevicePath_PaddedIndex(t *testing.T) {
	tests := []struct {
		index string
		want  string
	}{
		{"7", "07"},
		{"11", "11"},
		{"0", "00"},
		{"123", "123"},
	}

	for _, tt := range tests {
		p := DevicePath{Index: tt.index}
		if got := p.PaddedIndex(); got != tt.want {
			t.Errorf("PaddedIndex(%q) = %q, want %q", tt.index, got, tt.want)
		}
	}
}
