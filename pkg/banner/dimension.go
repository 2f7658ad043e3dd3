package banner

import (
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Unit is the unit marker of a [Dimension].
type Unit int

const (
	// UnitNone marks a dimension that was not specified.
	// This is the zero value.
	UnitNone Unit = iota
	// UnitPx is an absolute pixel value.
	UnitPx
	// UnitPercent is relative to the reference geometry.
	UnitPercent
	// UnitAuto lets the content decide.
	UnitAuto
	// UnitRaw is any other CSS length (em, vh, calc(...)). Geometry treats it
	// as opaque and passes it through.
	UnitRaw
)

// String returns a human-readable representation of the unit.
func (u Unit) String() string {
	switch u {
	case UnitNone:
		return "none"
	case UnitPx:
		return "px"
	case UnitPercent:
		return "%"
	case UnitAuto:
		return "auto"
	case UnitRaw:
		return "raw"
	default:
		return "Unit(" + strconv.Itoa(int(u)) + ")"
	}
}

// Dimension is a number-with-unit size value.
type Dimension struct {
	Value float64
	Unit  Unit
	// Raw holds the original text for UnitRaw.
	Raw string
}

// Px returns a pixel dimension.
func Px(v float64) Dimension { return Dimension{Value: v, Unit: UnitPx} }

// Percent returns a percentage dimension.
func Percent(v float64) Dimension { return Dimension{Value: v, Unit: UnitPercent} }

// Auto returns an auto dimension.
func Auto() Dimension { return Dimension{Unit: UnitAuto} }

// ParseDimension parses "50%", "120px", "120", "auto" or "" into a Dimension.
// Unrecognised lengths are preserved as UnitRaw; parsing never fails.
func ParseDimension(s string) Dimension {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Dimension{}
	case strings.EqualFold(s, "auto"):
		return Auto()
	case strings.HasSuffix(s, "%"):
		if v, ok := parseNumber(strings.TrimSuffix(s, "%")); ok {
			return Percent(v)
		}
	case strings.HasSuffix(strings.ToLower(s), "px"):
		if v, ok := parseNumber(s[:len(s)-2]); ok {
			return Px(v)
		}
	default:
		if v, ok := parseNumber(s); ok {
			return Px(v)
		}
	}
	return Dimension{Unit: UnitRaw, Raw: s}
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// IsSet reports whether the dimension was specified.
func (d Dimension) IsSet() bool { return d.Unit != UnitNone }

// IsPx reports whether the dimension is an absolute pixel value.
func (d Dimension) IsPx() bool { return d.Unit == UnitPx }

// IsPercent reports whether the dimension is relative.
func (d Dimension) IsPercent() bool { return d.Unit == UnitPercent }

// String renders the dimension as a CSS value ("200px", "50%", "auto").
// Unset dimensions render as the empty string.
func (d Dimension) String() string {
	switch d.Unit {
	case UnitPx:
		return formatNumber(d.Value) + "px"
	case UnitPercent:
		return formatNumber(d.Value) + "%"
	case UnitAuto:
		return "auto"
	case UnitRaw:
		return d.Raw
	default:
		return ""
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// UnmarshalYAML decodes a scalar such as "50%" or 120.
func (d *Dimension) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return shapeError("dimension", value, "must be a scalar")
	}
	if value.Tag == "!!null" {
		*d = Dimension{}
		return nil
	}
	*d = ParseDimension(value.Value)
	return nil
}

// MarshalYAML encodes the dimension as its CSS text.
func (d Dimension) MarshalYAML() (any, error) {
	return d.String(), nil
}
