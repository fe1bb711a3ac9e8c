package telemetry

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Logger is the minimal logging interface the builder needs.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

// noopLogger discards all output. Used when no logger is configured.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}

// systemCategory is the implicit group for fields with no device path.
const systemCategory = "system"

// Builder turns raw field streams into batches of typed, tagged points.
//
// Both gateway API generations are reduced to RawGroups before building, so
// there is exactly one grouping and emission algorithm. A Builder holds no
// per-cycle state and may be reused across cycles.
type Builder struct {
	registry *Registry
	log      Logger
}

// NewBuilder creates a Builder over the given registry.
// A nil logger disables warning output.
func NewBuilder(registry *Registry, log Logger) *Builder {
	if log == nil {
		log = noopLogger{}
	}
	return &Builder{
		registry: registry,
		log:      log,
	}
}

// SplitFields partitions one fetched payload into raw groups.
//
// Fields whose identifier parses as a device path are grouped by
// (category, index), with the bare field name retained for registry lookup.
// Everything else lands in the implicit system group. Group order follows
// first appearance in the input.
func (b *Builder) SplitFields(gen Generation, fields []RawField) []RawGroup {
	var groups []RawGroup
	byKey := make(map[string]int)

	appendTo := func(key, category, index string, f RawField) {
		i, ok := byKey[key]
		if !ok {
			i = len(groups)
			byKey[key] = i
			groups = append(groups, RawGroup{
				Category: category,
				Index:    index,
				Gen:      gen,
			})
		}
		groups[i].Fields = append(groups[i].Fields, f)
	}

	for _, f := range fields {
		if path, ok := ParseDevicePath(f.Name); ok {
			key := path.Category + "/" + path.Index
			appendTo(key, path.Category, path.Index, RawField{Name: path.Field, Value: f.Value})
			continue
		}
		appendTo(systemCategory, systemCategory, "", f)
	}

	return groups
}

// LegacyGroups converts the legacy device-listing shape into raw groups.
//
// Each device entry is a flat key/value map with no path-structured keys;
// the entry itself is the group, bypassing the path parser entirely. Device
// identity (serial, type) arrives as ordinary property fields within the
// entry, so no category or index is attached here.
func (b *Builder) LegacyGroups(devices []map[string]string) []RawGroup {
	groups := make([]RawGroup, 0, len(devices))
	for _, entry := range devices {
		names := make([]string, 0, len(entry))
		for name := range entry {
			names = append(names, name)
		}
		sort.Strings(names)

		g := RawGroup{Gen: GenLegacy, Fields: make([]RawField, 0, len(entry))}
		for _, name := range names {
			g.Fields = append(g.Fields, RawField{Name: name, Value: entry[name]})
		}
		groups = append(groups, g)
	}
	return groups
}

// Build produces one batch per raw group. Groups yielding no points (all
// fields ignored, properties only, or every coercion failed) produce no batch.
//
// Normalization is idempotent: re-running Build over the same raw input
// yields the same points.
func (b *Builder) Build(groups []RawGroup) []Batch {
	var batches []Batch
	for _, g := range groups {
		batch := b.buildGroup(g)
		if len(batch.Points) > 0 {
			batches = append(batches, batch)
		}
	}
	return batches
}

// buildGroup emits the points of a single group: resolve the timestamp,
// resolve shared tags, then coerce each metric field.
func (b *Builder) buildGroup(g RawGroup) Batch {
	ts := b.resolveTimestamp(g)
	tags := b.resolveTags(g)
	label := groupLabel(g, tags)

	batch := Batch{Device: label}
	for _, f := range g.Fields {
		spec := b.registry.Classify(g.Gen, f.Name)
		if spec.Kind != KindMetric {
			continue
		}

		value, err := coerceMetric(spec, f.Value)
		if err != nil {
			// Per-field failure: drop this field, keep the rest of the group.
			b.log.Warn("dropping field",
				"device", label,
				"field", f.Name,
				"value", f.Value,
				"error", err,
			)
			continue
		}

		batch.Points = append(batch.Points, Point{
			Series: seriesName(f.Name),
			Value:  value,
			Tags:   tags,
			Time:   ts,
		})
	}

	return batch
}

// resolveTimestamp finds the group's timestamp-classified field and parses it.
// A missing or unparseable timestamp degrades to the zero time; the sink
// assigns ingestion time instead.
func (b *Builder) resolveTimestamp(g RawGroup) (ts time.Time) {
	for _, f := range g.Fields {
		if b.registry.Classify(g.Gen, f.Name).Kind != KindTimestamp {
			continue
		}
		parsed, err := ParseTimestamp(f.Value)
		if err != nil {
			// Per-group failure: the group proceeds without a timestamp.
			b.log.Warn("dropping timestamp",
				"field", f.Name,
				"value", f.Value,
				"error", err,
			)
			return time.Time{}
		}
		return parsed
	}
	return time.Time{}
}

// resolveTags assembles the tag set shared by every point of the group:
// device identity first, then each property-classified field.
func (b *Builder) resolveTags(g RawGroup) map[string]string {
	tags := make(map[string]string)

	if g.Category != "" {
		tags["device_type"] = g.Category
	}
	if g.Index != "" {
		tags["device_index"] = padIndex(g.Index)
	}

	for _, f := range g.Fields {
		if b.registry.Classify(g.Gen, f.Name).Kind != KindProperty {
			continue
		}
		tags[tagName(g.Gen, f.Name)] = f.Value
	}

	return tags
}

// tagName maps a property field name to its tag key. A handful of identity
// fields get canonical names so both API generations emit the same tags;
// everything else keeps its bare field name (lowercased for legacy).
func tagName(gen Generation, name string) string {
	switch name {
	case "sn", "SERIALNUMBER":
		return "serial"
	case "prodMdlNm":
		return "model"
	case "fwVer":
		return "firmware"
	case "DEVICETYPE":
		return "device_type"
	}
	name = seriesName(name)
	if gen == GenLegacy {
		return strings.ToLower(name)
	}
	return name
}

// seriesName returns the bare field name: the last path segment for
// path-shaped identifiers, the identifier itself otherwise.
func seriesName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// groupLabel produces the human-readable device label used for logging and
// batch reporting.
func groupLabel(g RawGroup, tags map[string]string) string {
	if g.Category == systemCategory {
		return systemCategory
	}
	if g.Category != "" {
		return g.Category + "/" + padIndex(g.Index)
	}
	if serial, ok := tags["serial"]; ok && serial != "" {
		return serial
	}
	return "device"
}

// coerceMetric applies the registry's coercion rule to a metric raw value.
//
// Integer coercion requires integer-formatted strings; the gateway guarantees
// this for int-catalogued fields, so anything else is a bad value. A metric
// with string coercion is a catalog mistake and also fails here.
func coerceMetric(spec MeasurementSpec, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	switch spec.Coercion {
	case CoerceFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a float", ErrBadValue, raw)
		}
		return v, nil
	case CoerceInt:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadValue, raw)
		}
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: metric field declares no numeric coercion", ErrBadValue)
	}
}
