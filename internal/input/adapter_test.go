package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct{ events []Event }

func (r *recorder) HandleInput(ev Event) { r.events = append(r.events, ev) }

func TestMouseEventsUseOffsetDirectly(t *testing.T) {
	rec := &recorder{}
	a := NewAdapter(rec, func() (float64, float64) { return 100, 100 })

	a.MouseDown(MouseEvent{OffsetX: 5, OffsetY: 6})
	a.MouseMove(MouseEvent{OffsetX: 7, OffsetY: 8})
	a.MouseUp()
	a.MouseOut()

	assert.Equal(t, []Event{
		{Kind: Down, X: 5, Y: 6},
		{Kind: Move, X: 7, Y: 8},
		{Kind: Up},
		{Kind: Leave},
	}, rec.events)
}

func TestTouchEventsSubtractOrigin(t *testing.T) {
	rec := &recorder{}
	a := NewAdapter(rec, func() (float64, float64) { return 20, 30 })

	a.TouchStart(&TouchEvent{Touches: []TouchPoint{{ClientX: 25, ClientY: 40}}})
	move := &TouchEvent{Touches: []TouchPoint{{ClientX: 50, ClientY: 60}, {ClientX: 1, ClientY: 1}}}
	a.TouchMove(move)
	a.TouchEnd(&TouchEvent{})

	assert.Equal(t, []Event{
		{Kind: Down, X: 5, Y: 10},
		{Kind: Move, X: 30, Y: 30},
		{Kind: Up},
	}, rec.events)
	assert.True(t, move.DefaultPrevented(), "touch moves suppress scrolling")
}

func TestTouchWithoutPointsIsDropped(t *testing.T) {
	rec := &recorder{}
	a := NewAdapter(rec, nil)

	empty := &TouchEvent{}
	a.TouchStart(empty)
	a.TouchMove(empty)
	a.TouchStart(nil)

	assert.Empty(t, rec.events)
	assert.False(t, empty.DefaultPrevented())
}

func TestNilOriginDefaultsToZero(t *testing.T) {
	var got []Event
	a := NewAdapter(HandlerFunc(func(ev Event) { got = append(got, ev) }), nil)

	a.TouchStart(&TouchEvent{Touches: []TouchPoint{{ClientX: 3, ClientY: 4}}})

	assert.Equal(t, []Event{{Kind: Down, X: 3, Y: 4}}, got)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "down", Down.String())
	assert.Equal(t, "leave", Leave.String())
	assert.Equal(t, "unknown", Kind(42).String())
}
