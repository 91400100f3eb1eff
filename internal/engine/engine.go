// Package engine owns the drawing session, the color mode state machine and
// everything that turns pointer events into strokes on a surface.
package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"
	"sync"

	"FreehandBoard/internal/input"
	"FreehandBoard/internal/state"
	"FreehandBoard/internal/surface"

	"github.com/gogpu/gg"
)

var (
	ErrInvalidLineWidth = errors.New("engine: line width must be a positive number")
	ErrInvalidLineCap   = errors.New("engine: invalid line cap")
	ErrInvalidMode      = errors.New("engine: invalid color mode")
	ErrInvalidColor     = errors.New("engine: invalid color")
	ErrInvalidSize      = errors.New("engine: invalid surface size")
	ErrDecode           = errors.New("engine: decode image")
)

// StrokeStyle is the configuration applied to every new segment.
type StrokeStyle struct {
	LineWidth float64
	LineCap   surface.LineCap
	// BaseColor is the last explicitly picked color. Cycling modes never
	// touch it, so it is what drawing returns to.
	BaseColor color.Color
}

type session struct {
	active   bool
	last     state.Point
	strokeID string
}

// Engine is a drawing surface's state machine. Methods are safe to call from
// several goroutines; each runs to completion before the next starts.
type Engine struct {
	mu      sync.Mutex
	surface surface.Surface
	log     *slog.Logger

	style   StrokeStyle
	mode    ColorMode
	mirror  bool
	cycle   ColorCycle
	session session

	// Callbacks run after the engine lock is released. Set them before
	// feeding input.
	OnSegment func(seg state.Segment)
	OnClear   func()
	OnChange  func()
}

var _ input.Handler = (*Engine)(nil)

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithLineWidth(w float64) Option {
	return func(e *Engine) { e.style.LineWidth = w }
}

func WithLineCap(c surface.LineCap) Option {
	return func(e *Engine) { e.style.LineCap = c }
}

func WithColor(c color.Color) Option {
	return func(e *Engine) { e.style.BaseColor = c }
}

// WithMode starts the engine in m instead of Solid.
func WithMode(m ColorMode) Option {
	return func(e *Engine) { e.mode = m }
}

func WithMirror(enabled bool) Option {
	return func(e *Engine) { e.mirror = enabled }
}

// New creates an engine drawing onto s. Defaults: width 1, round caps,
// black, Solid, mirror off.
func New(s surface.Surface, opts ...Option) (*Engine, error) {
	e := &Engine{
		surface: s,
		log:     slog.New(slog.DiscardHandler),
		style: StrokeStyle{
			LineWidth: 1,
			LineCap:   surface.CapRound,
			BaseColor: color.Black,
		},
		mode:  Solid,
		cycle: NewColorCycle(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !validWidth(e.style.LineWidth) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLineWidth, e.style.LineWidth)
	}
	if !e.style.LineCap.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLineCap, e.style.LineCap)
	}
	if e.style.BaseColor == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidColor)
	}
	if !e.mode.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(e.mode))
	}
	s.SetCompositeMode(e.mode.composite())
	return e, nil
}

func validWidth(w float64) bool {
	return w > 0 && !math.IsInf(w, 0) && !math.IsNaN(w)
}

func (e *Engine) SetLineWidth(w float64) error {
	if !validWidth(w) {
		return fmt.Errorf("%w: %v", ErrInvalidLineWidth, w)
	}
	e.mu.Lock()
	e.style.LineWidth = w
	e.mu.Unlock()
	return nil
}

func (e *Engine) SetLineCap(c surface.LineCap) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidLineCap, c)
	}
	e.mu.Lock()
	e.style.LineCap = c
	e.mu.Unlock()
	return nil
}

// PickColor records c as the base color and switches to Solid: picking a
// literal color always means drawing with it.
func (e *Engine) PickColor(c color.Color) {
	if c == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.style.BaseColor = c
	e.setModeLocked(Solid)
}

// PickHex parses "#rgb" or "#rrggbb" and picks it.
func (e *Engine) PickHex(s string) error {
	c, err := ParseHexColor(s)
	if err != nil {
		return err
	}
	e.PickColor(c)
	return nil
}

// ParseHexColor accepts "#rgb", "#rrggbb" and the same without '#'.
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for _, r := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	return toNRGBA(gg.Hex(hex).Color()), nil
}

// SetMode enables or disables one color mode. The full resulting state is
// computed at once, so two modes are never active together.
func (e *Engine) SetMode(m ColorMode, enabled bool) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setModeLocked(nextMode(e.mode, m, enabled))
	return nil
}

// setModeLocked switches modes and keeps the surface compositing in step.
// BaseColor already holds the picked color, so entering a cycling mode needs
// no snapshot and leaving one resolves back to it.
func (e *Engine) setModeLocked(next ColorMode) {
	if next != e.mode {
		e.log.Debug("color mode changed", "from", e.mode, "to", next)
		e.mode = next
	}
	e.surface.SetCompositeMode(next.composite())
}

func (e *Engine) SetMirrorMode(enabled bool) {
	e.mu.Lock()
	e.mirror = enabled
	e.mu.Unlock()
}

func (e *Engine) Mode() ColorMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Enabled reports whether m is the active mode.
func (e *Engine) Enabled(m ColorMode) bool {
	return e.Mode() == m
}

func (e *Engine) MirrorMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mirror
}

func (e *Engine) Style() StrokeStyle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style
}

func (e *Engine) Cycle() ColorCycle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycle
}

// Drawing reports whether a stroke is in progress.
func (e *Engine) Drawing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.active
}

// ResolveColor returns the color the next segment would use without
// advancing the cycle.
func (e *Engine) ResolveColor() color.Color {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolveLocked()
}

func (e *Engine) resolveLocked() color.Color {
	switch e.mode {
	case Rainbow:
		return e.cycle.Rainbow()
	case Multicolor:
		return e.cycle.Multicolor()
	}
	// Eraser strokes only contribute coverage; erase compositing removes it.
	return e.style.BaseColor
}

// HandleInput runs the stroke state machine for one normalized event.
func (e *Engine) HandleInput(ev input.Event) {
	var segs []state.Segment

	e.mu.Lock()
	switch ev.Kind {
	case input.Down:
		e.session = session{
			active:   true,
			last:     state.Point{X: ev.X, Y: ev.Y},
			strokeID: state.NewStrokeID(),
		}
	case input.Move:
		segs = e.moveLocked(ev.X, ev.Y)
	case input.Up, input.Leave:
		e.session.active = false
	}
	e.mu.Unlock()

	if len(segs) == 0 {
		return
	}
	if e.OnSegment != nil {
		for _, seg := range segs {
			e.OnSegment(seg)
		}
	}
	e.changed()
}

func (e *Engine) moveLocked(x, y float64) []state.Segment {
	if !e.session.active {
		return nil
	}
	switch e.mode {
	case Rainbow:
		e.cycle.AdvanceHue()
	case Multicolor:
		e.cycle.Advance()
	}
	c := toNRGBA(e.resolveLocked())

	last := e.session.last
	to := state.Point{X: x, Y: y}
	segs := []state.Segment{e.segmentLocked(last, to, c, false)}
	if e.mirror {
		mfrom, mto := MirrorSegment(last, to, float64(e.surface.Width()))
		segs = append(segs, e.segmentLocked(mfrom, mto, c, true))
	}
	for _, seg := range segs {
		if err := e.strokeLocked(seg); err != nil {
			e.log.Warn("stroke failed", "err", err)
		}
	}
	e.session.last = to
	return segs
}

// MirrorSegment reflects the segment last→to across the vertical centerline
// of a surface of the given width. The mirrored segment runs from the
// reflection of to back to the reflection of last.
func MirrorSegment(last, to state.Point, width float64) (state.Point, state.Point) {
	return state.Point{X: width - to.X, Y: to.Y}, state.Point{X: width - last.X, Y: last.Y}
}

func (e *Engine) segmentLocked(from, to state.Point, c color.NRGBA, mirrored bool) state.Segment {
	return state.Segment{
		StrokeID: e.session.strokeID,
		From:     from,
		To:       to,
		Width:    e.style.LineWidth,
		Cap:      e.style.LineCap.String(),
		Color:    c,
		Erase:    e.mode == Eraser,
		Mirrored: mirrored,
	}
}

func (e *Engine) strokeLocked(seg state.Segment) error {
	lineCap, err := surface.ParseLineCap(seg.Cap)
	if err != nil {
		lineCap = surface.CapRound
	}
	s := e.surface
	s.SetLineWidth(seg.Width)
	s.SetLineCap(lineCap)
	s.SetStrokeColor(seg.Color)
	s.BeginPath()
	s.MoveTo(seg.From.X, seg.From.Y)
	s.LineTo(seg.To.X, seg.To.Y)
	return s.Stroke()
}

// ApplySegment renders a segment produced by another engine. The local
// session, color cycle and mode are left alone.
func (e *Engine) ApplySegment(seg state.Segment) error {
	if !validWidth(seg.Width) {
		return fmt.Errorf("%w: %v", ErrInvalidLineWidth, seg.Width)
	}
	e.mu.Lock()
	if seg.Erase {
		e.surface.SetCompositeMode(surface.CompositeErase)
	} else {
		e.surface.SetCompositeMode(surface.CompositeNormal)
	}
	err := e.strokeLocked(seg)
	e.surface.SetCompositeMode(e.mode.composite())
	e.mu.Unlock()

	if err != nil {
		return fmt.Errorf("apply segment: %w", err)
	}
	e.changed()
	return nil
}

// Clear empties the whole surface.
func (e *Engine) Clear() {
	e.clear()
	if e.OnClear != nil {
		e.OnClear()
	}
	e.changed()
}

// ClearRemote empties the surface on behalf of a peer without reporting it
// back through OnClear.
func (e *Engine) ClearRemote() {
	e.clear()
	e.changed()
}

func (e *Engine) clear() {
	e.mu.Lock()
	e.surface.ClearRect(0, 0, e.surface.Width(), e.surface.Height())
	e.mu.Unlock()
}

// Resize changes the surface size while keeping its pixels: the buffer is
// captured, the surface resized and the buffer put back at the origin.
// Content beyond the new bounds is clipped; new area stays blank.
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	e.mu.Lock()
	buf := e.surface.PixelBuffer()
	if err := e.surface.SetSize(width, height); err != nil {
		e.mu.Unlock()
		return fmt.Errorf("resize surface: %w", err)
	}
	e.surface.PutPixelBuffer(buf, 0, 0)
	e.surface.SetCompositeMode(e.mode.composite())
	e.mu.Unlock()

	e.log.Debug("surface resized", "width", width, "height", height)
	e.changed()
	return nil
}

func (e *Engine) Size() (width, height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Width(), e.surface.Height()
}

// Image returns a snapshot of the raster for display.
func (e *Engine) Image() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Image()
}

func (e *Engine) changed() {
	if e.OnChange != nil {
		e.OnChange()
	}
}
