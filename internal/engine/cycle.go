package engine

import (
	"image/color"

	"github.com/gogpu/gg"
)

// oscillator bounces a value between min and max by step. The direction is
// decided before each step: reaching max turns it down, reaching min turns
// it back up.
type oscillator struct {
	value      float64
	step       float64
	min, max   float64
	decreasing bool
}

func (o *oscillator) advance() {
	if o.value >= o.max {
		o.decreasing = true
	} else if o.value <= o.min {
		o.decreasing = false
	}
	if o.decreasing {
		o.value -= o.step
	} else {
		o.value += o.step
	}
}

// ColorCycle generates the Rainbow and Multicolor stroke colors. It advances
// once per rendered segment.
type ColorCycle struct {
	hue        oscillator
	saturation oscillator
	lightness  oscillator
}

// NewColorCycle starts at hue 0, saturation 100, lightness 50, all rising.
func NewColorCycle() ColorCycle {
	return ColorCycle{
		hue:        oscillator{value: 0, step: 1, min: 0, max: 360},
		saturation: oscillator{value: 100, step: 0.5, min: 0, max: 100},
		lightness:  oscillator{value: 50, step: 0.5, min: 0, max: 100},
	}
}

// AdvanceHue steps only the hue (Rainbow).
func (c *ColorCycle) AdvanceHue() {
	c.hue.advance()
}

// Advance steps hue, saturation and lightness together (Multicolor).
func (c *ColorCycle) Advance() {
	c.hue.advance()
	c.saturation.advance()
	c.lightness.advance()
}

func (c ColorCycle) Hue() float64        { return c.hue.value }
func (c ColorCycle) Saturation() float64 { return c.saturation.value }
func (c ColorCycle) Lightness() float64  { return c.lightness.value }

func (c ColorCycle) HueDecreasing() bool        { return c.hue.decreasing }
func (c ColorCycle) SaturationDecreasing() bool { return c.saturation.decreasing }
func (c ColorCycle) LightnessDecreasing() bool  { return c.lightness.decreasing }

// Rainbow is hsl(hue, 100%, 50%).
func (c ColorCycle) Rainbow() color.NRGBA {
	return hsl(c.hue.value, 100, 50)
}

// Multicolor is hsl(hue, saturation%, lightness%).
func (c ColorCycle) Multicolor() color.NRGBA {
	return hsl(c.hue.value, c.saturation.value, c.lightness.value)
}

// hsl takes saturation and lightness as percentages.
func hsl(h, s, l float64) color.NRGBA {
	return toNRGBA(gg.HSL(h, s/100, l/100).Color())
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
