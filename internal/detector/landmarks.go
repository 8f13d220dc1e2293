// Package detector provides hand landmark types and the detection boundary
// toward the external pose-estimation pipeline.
package detector

import "math"

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a 2D landmark position in pixel coordinates (y grows downward).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Hand represents one detected hand: 21 landmarks plus metadata from the
// pose pipeline.
type Hand struct {
	Points     [NumLandmarks]Point `json:"points"`
	Handedness string              `json:"handedness"` // "Left" or "Right"
	Score      float64             `json:"score"`
}

// Measurement is the per-frame input consumed by the stabilization layer.
// Present is false when no hand was found this cycle; the landmark array is
// then meaningless.
type Measurement struct {
	Timestamp  float64 // seconds
	Landmarks  [NumLandmarks]Point
	Confidence float64
	Present    bool
}

// Measurement converts a detection into the per-frame input of the
// stabilization layer.
func (h *Hand) Measurement(timestamp float64) Measurement {
	return Measurement{
		Timestamp:  timestamp,
		Landmarks:  h.Points,
		Confidence: h.Score,
		Present:    true,
	}
}

// Absent returns a Measurement for a cycle in which no hand was found.
func Absent(timestamp float64) Measurement {
	return Measurement{Timestamp: timestamp}
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// AngleAt returns the angle at vertex between the rays vertex->a and
// vertex->b, in degrees. Degenerate rays yield 180 so that callers treating
// large angles as "straight" are not misled by a collapsed joint.
func AngleAt(vertex, a, b Point) float64 {
	v1x, v1y := a.X-vertex.X, a.Y-vertex.Y
	v2x, v2y := b.X-vertex.X, b.Y-vertex.Y
	n1 := math.Hypot(v1x, v1y)
	n2 := math.Hypot(v2x, v2y)
	if n1 < 1e-9 || n2 < 1e-9 {
		return 180
	}
	cos := (v1x*v2x + v1y*v2y) / (n1 * n2)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos) * 180 / math.Pi
}

// PalmCenter returns the mean of the wrist and the four finger MCP joints,
// a stable reference point for trajectory tracking.
func PalmCenter(lms *[NumLandmarks]Point) Point {
	idx := [...]int{Wrist, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	var c Point
	for _, i := range idx {
		c.X += lms[i].X
		c.Y += lms[i].Y
	}
	c.X /= float64(len(idx))
	c.Y /= float64(len(idx))
	return c
}
