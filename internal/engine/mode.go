package engine

import (
	"fmt"
	"strings"

	"FreehandBoard/internal/surface"
)

// ColorMode decides how a segment's color is chosen. Exactly one is active.
type ColorMode int

const (
	Solid ColorMode = iota
	Rainbow
	Multicolor
	Eraser
)

var modeNames = [...]string{
	Solid:      "solid",
	Rainbow:    "rainbow",
	Multicolor: "multicolor",
	Eraser:     "eraser",
}

func (m ColorMode) String() string {
	if m.Valid() {
		return modeNames[m]
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

func (m ColorMode) Valid() bool {
	return m >= Solid && m <= Eraser
}

// ParseColorMode accepts the mode names in any case.
func ParseColorMode(s string) (ColorMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return ColorMode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m ColorMode) composite() surface.CompositeMode {
	if m == Eraser {
		return surface.CompositeErase
	}
	return surface.CompositeNormal
}

// nextMode computes the whole resulting mode for one toggle. Enabling a mode
// replaces whatever was active; disabling the active mode falls back to
// Solid; disabling an inactive mode changes nothing.
func nextMode(current, m ColorMode, enabled bool) ColorMode {
	if enabled {
		return m
	}
	if current == m {
		return Solid
	}
	return current
}
