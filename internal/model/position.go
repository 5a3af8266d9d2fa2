package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPosition is returned by ParsePosition for anything other than
// three comma-separated finite numbers.
var ErrInvalidPosition = errors.New("invalid position")

// Position is a point in the AR scene, in metres relative to the campus
// origin.  It is stored as "x,y,z" in the ar_buildings.position column; the
// string form only exists at the store boundary.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ParsePosition parses the "x,y,z" column format.  Whitespace around each
// component is ignored.
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return Position{}, fmt.Errorf("%w: %q: want 3 components, got %d", ErrInvalidPosition, s, len(parts))
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Position{}, fmt.Errorf("%w: %q: component %d", ErrInvalidPosition, s, i)
		}
		v[i] = f
	}
	return Position{X: v[0], Y: v[1], Z: v[2]}, nil
}

// MustParsePosition is ParsePosition for literals known at build time.
func MustParsePosition(s string) Position {
	p, err := ParsePosition(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String formats the position in the column format using the shortest
// representation of each component, e.g. "-2,0,-1".
func (p Position) String() string {
	return formatComponent(p.X) + "," + formatComponent(p.Y) + "," + formatComponent(p.Z)
}

func formatComponent(f float64) string {
	if f == 0 {
		// normalises -0
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
