package state

import (
	"image/color"
)

type Point struct{ X, Y float64 }

// Segment is one rendered straight stroke piece, as reported by the engine
// and replayed by share viewers.
type Segment struct {
	StrokeID string      `json:"stroke_id"`
	From     Point       `json:"from"`
	To       Point       `json:"to"`
	Width    float64     `json:"width"`
	Cap      string      `json:"cap"`
	Color    color.NRGBA `json:"color"`
	Erase    bool        `json:"erase,omitempty"`
	Mirrored bool        `json:"mirrored,omitempty"`
}

type OpType string

const (
	OpSegment  OpType = "segment"
	OpClear    OpType = "clear"
	OpSnapshot OpType = "snapshot"
)

// Op is the unit exchanged between share peers.
type Op struct {
	Type     OpType   `json:"type"`
	Segment  *Segment `json:"segment,omitempty"`
	Snapshot []byte   `json:"snapshot,omitempty"` // PNG of the host raster
	Lamport  uint64   `json:"lamport"`
	Site     string   `json:"site"`
}
