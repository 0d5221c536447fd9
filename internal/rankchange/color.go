package rankchange

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Background intensity bounds shared by every renderer
const (
	NewIntensity     = 0.15
	BaseIntensity    = 0.20
	IntensityStep    = 0.05
	SaturationPoint  = 10
	MaxIntensity     = BaseIntensity + IntensityStep*SaturationPoint
	neutralIntensity = 0.0
)

// Color is a background tint
type Color struct {
	R, G, B uint8
	Alpha   float64
}

var (
	// PositiveHue tints New and Up rows
	PositiveHue = Color{R: 46, G: 160, B: 67}
	// NegativeHue tints Down rows
	NegativeHue = Color{R: 214, G: 39, B: 40}
)

// CSS renders the tint as an rgba() value, or "" when there is no tint
func (c Color) CSS() string {
	if c.Alpha <= 0 {
		return ""
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.2f)", c.R, c.G, c.B, c.Alpha)
}

// Intensity maps a label family and magnitude to a background alpha.
// Up and Down grow linearly with n and saturate at MaxIntensity once
// n >= SaturationPoint.
func Intensity(kind Label, n int) float64 {
	switch kind {
	case LabelNew:
		return NewIntensity
	case LabelUp, LabelDown:
		if n < 0 {
			n = -n
		}
		if n > SaturationPoint {
			n = SaturationPoint
		}
		return BaseIntensity + IntensityStep*float64(n)
	default:
		return neutralIntensity
	}
}

// Tint returns the background for a delta
func Tint(d RankDelta) Color {
	return TintFor(d.Kind, d.Magnitude())
}

// TintFor returns the background for a label family and magnitude
func TintFor(kind Label, n int) Color {
	c := PositiveHue
	if kind == LabelDown {
		c = NegativeHue
	}
	c.Alpha = Intensity(kind, n)
	return c
}

var movePattern = regexp.MustCompile(`(?i)^(up|down)\((\d+)\)$`)

// ParseLabel splits a display label such as "Up(4)" into its family and
// magnitude.
func ParseLabel(label string) (Label, int, error) {
	s := strings.TrimSpace(label)

	switch strings.ToLower(s) {
	case "new":
		return LabelNew, 0, nil
	case "unchanged", "-":
		return LabelUnchanged, 0, nil
	}

	m := movePattern.FindStringSubmatch(s)
	if m == nil {
		return "", 0, fmt.Errorf("unknown rank label %q", label)
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("rank label %q: %w", label, err)
	}

	if strings.EqualFold(m[1], "up") {
		return LabelUp, n, nil
	}
	return LabelDown, n, nil
}

// ParseKind accepts a label family name in any case
func ParseKind(s string) (Label, error) {
	switch Label(strings.ToLower(strings.TrimSpace(s))) {
	case LabelNew:
		return LabelNew, nil
	case LabelUp:
		return LabelUp, nil
	case LabelDown:
		return LabelDown, nil
	case LabelUnchanged:
		return LabelUnchanged, nil
	}
	return "", fmt.Errorf("unknown label family %q", s)
}
