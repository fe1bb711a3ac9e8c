package telemetry

import "testing"

func TestRegistry_Classify(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name       string
		gen        Generation
		identifier string
		want       MeasurementSpec
	}{
		{
			name:       "system livedata metric",
			gen:        GenCurrent,
			identifier: "/sys/livedata/pv_p",
			want:       MeasurementSpec{Coercion: CoerceFloat, Kind: KindMetric},
		},
		{
			name:       "system livedata timestamp",
			gen:        GenCurrent,
			identifier: "/sys/livedata/time",
			want:       MeasurementSpec{Coercion: CoerceString, Kind: KindTimestamp},
		},
		{
			name:       "device serial property",
			gen:        GenCurrent,
			identifier: "sn",
			want:       MeasurementSpec{Coercion: CoerceString, Kind: KindProperty},
		},
		{
			name:       "shared camel case metric",
			gen:        GenCurrent,
			identifier: "p3phsumKw",
			want:       MeasurementSpec{Coercion: CoerceFloat, Kind: KindMetric},
		},
		{
			name:       "integer metric",
			gen:        GenCurrent,
			identifier: "socPct",
			want:       MeasurementSpec{Coercion: CoerceInt, Kind: KindMetric},
		},
		{
			name:       "legacy all caps metric",
			gen:        GenLegacy,
			identifier: "POWER",
			want:       MeasurementSpec{Coercion: CoerceFloat, Kind: KindMetric},
		},
		{
			name:       "legacy serial property",
			gen:        GenLegacy,
			identifier: "SERIALNUMBER",
			want:       MeasurementSpec{Coercion: CoerceString, Kind: KindProperty},
		},
		{
			name:       "legacy timestamp",
			gen:        GenLegacy,
			identifier: "TIMESTAMP",
			want:       MeasurementSpec{Coercion: CoerceString, Kind: KindTimestamp},
		},
		{
			name:       "unknown identifier is ignored",
			gen:        GenCurrent,
			identifier: "notInAnyFirmware",
			want:       MeasurementSpec{},
		},
		{
			name:       "identifiers do not leak across generations",
			gen:        GenLegacy,
			identifier: "p3phsumKw",
			want:       MeasurementSpec{},
		},
		{
			name:       "catalogued but excluded field",
			gen:        GenLegacy,
			identifier: "UPTIME",
			want:       MeasurementSpec{Coercion: CoerceInt, Kind: KindIgnored},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Classify(tt.gen, tt.identifier)
			if got != tt.want {
				t.Errorf("Classify(%v, %q) = %+v, want %+v", tt.gen, tt.identifier, got, tt.want)
			}
		})
	}
}

func TestRegistry_Classify_UnknownGeneration(t *testing.T) {
	r := NewRegistry()

	got := r.Classify(Generation(99), "POWER")
	if got.Kind != KindIgnored {
		t.Errorf("Classify(unknown gen) kind = %v, want KindIgnored", got.Kind)
	}
}

func TestGeneration_String(t *testing.T) {
	if got := GenCurrent.String(); got != "current" {
		t.Errorf("GenCurrent.String() = %q, want %q", got, "current")
	}
	if got := GenLegacy.String(); got != "legacy" {
		t.Errorf("GenLegacy.String() = %q, want %q", got, "legacy")
	}
}
