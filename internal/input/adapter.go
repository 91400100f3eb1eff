// Package input turns mouse and touch callbacks into one stream of
// surface-local pointer events.
package input

// Kind is the type of a normalized pointer event.
type Kind int

const (
	Down Kind = iota
	Move
	Up
	Leave
)

func (k Kind) String() string {
	switch k {
	case Down:
		return "down"
	case Move:
		return "move"
	case Up:
		return "up"
	case Leave:
		return "leave"
	}
	return "unknown"
}

// Event is a normalized pointer event. X and Y are surface-local pixels and
// are only meaningful for Down and Move.
type Event struct {
	Kind Kind
	X, Y float64
}

// Handler consumes normalized events.
type Handler interface {
	HandleInput(ev Event)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ev Event)

func (f HandlerFunc) HandleInput(ev Event) { f(ev) }

// MouseEvent carries a position already relative to the surface's origin.
type MouseEvent struct {
	OffsetX, OffsetY float64
}

// TouchPoint is one finger in window (client) coordinates.
type TouchPoint struct {
	ClientX, ClientY float64
}

// TouchEvent is a raw touch callback. PreventDefault asks the source not to
// run its own scroll or gesture handling for this event.
type TouchEvent struct {
	Touches []TouchPoint

	prevented bool
}

func (e *TouchEvent) PreventDefault()        { e.prevented = true }
func (e *TouchEvent) DefaultPrevented() bool { return e.prevented }

// Adapter forwards normalized events to a Handler. Origin reports the
// surface's top-left corner in client coordinates; it is consulted on every
// touch so the surface may move between events.
type Adapter struct {
	handler Handler
	origin  func() (x, y float64)
}

// NewAdapter returns an adapter delivering to h. A nil origin means the
// surface sits at the client origin.
func NewAdapter(h Handler, origin func() (x, y float64)) *Adapter {
	if origin == nil {
		origin = func() (float64, float64) { return 0, 0 }
	}
	return &Adapter{handler: h, origin: origin}
}

func (a *Adapter) MouseDown(e MouseEvent) {
	a.emit(Event{Kind: Down, X: e.OffsetX, Y: e.OffsetY})
}

func (a *Adapter) MouseMove(e MouseEvent) {
	a.emit(Event{Kind: Move, X: e.OffsetX, Y: e.OffsetY})
}

func (a *Adapter) MouseUp() { a.emit(Event{Kind: Up}) }

// MouseOut is the pointer leaving the surface.
func (a *Adapter) MouseOut() { a.emit(Event{Kind: Leave}) }

func (a *Adapter) TouchStart(e *TouchEvent) {
	if ev, ok := a.touch(Down, e); ok {
		a.emit(ev)
	}
}

func (a *Adapter) TouchMove(e *TouchEvent) {
	ev, ok := a.touch(Move, e)
	if !ok {
		return
	}
	e.PreventDefault()
	a.emit(ev)
}

func (a *Adapter) TouchEnd(*TouchEvent) { a.emit(Event{Kind: Up}) }

// touch converts the first touch point; events without one are dropped.
func (a *Adapter) touch(kind Kind, e *TouchEvent) (Event, bool) {
	if e == nil || len(e.Touches) == 0 {
		return Event{}, false
	}
	ox, oy := a.origin()
	t := e.Touches[0]
	return Event{Kind: kind, X: t.ClientX - ox, Y: t.ClientY - oy}, true
}

func (a *Adapter) emit(ev Event) {
	if a.handler != nil {
		a.handler.HandleInput(ev)
	}
}
