package styling

import (
	"fmt"
	"math"

	"github.com/jamesrr39/goutil/errorsx"
)

// NoMaxLevel marks a zoom clause without an upper level, e.g. "z12-"
const NoMaxLevel = math.MaxInt32

const earthRadiusMetres = 6378135

// Range is a half-open scale interval [Lower, Upper). Scale is ground metres per 100 screen pixels.
type Range struct {
	Lower float64
	Upper float64
}

func FullRange() Range {
	return Range{0, math.Inf(1)}
}

func (r Range) Contains(scale float64) bool {
	return r.Lower <= scale && scale < r.Upper
}

// Intersect is the part of r that is also in other
func (r Range) Intersect(other Range) Range {
	return Range{math.Max(r.Lower, other.Lower), math.Min(r.Upper, other.Upper)}
}

// Exclude narrows r to the side of other that scale lies on. scale must not be inside other.
func (r Range) Exclude(other Range, scale float64) Range {
	if scale < other.Lower {
		return Range{r.Lower, math.Min(r.Upper, other.Lower)}
	}
	return Range{math.Max(r.Lower, other.Upper), r.Upper}
}

func (r Range) String() string {
	return fmt.Sprintf("|s%v-%v", r.Lower, r.Upper)
}

// Level2Scale converts a zoom level to the scale at which it starts
func Level2Scale(level int) (float64, errorsx.Error) {
	if level < 0 {
		return 0, errorsx.Errorf("zoom level must not be negative, got %d", level)
	}

	return 2 * math.Pi * earthRadiusMetres / math.Exp2(float64(level)) / 2.56, nil
}

// RangeFromLevels builds the scale range of the zoom clause "zMin-zMax". Use NoMaxLevel for an open ended clause.
func RangeFromLevels(minLevel, maxLevel int) (Range, errorsx.Error) {
	if minLevel > maxLevel {
		return Range{}, errorsx.Errorf("zoom level range is inverted: %d-%d", minLevel, maxLevel)
	}

	r := FullRange()

	if maxLevel != NoMaxLevel {
		lower, err := Level2Scale(maxLevel + 1)
		if err != nil {
			return Range{}, errorsx.Wrap(err)
		}
		r.Lower = lower
	}

	if minLevel != 0 {
		upper, err := Level2Scale(minLevel)
		if err != nil {
			return Range{}, errorsx.Wrap(err)
		}
		r.Upper = upper
	}

	return r, nil
}
