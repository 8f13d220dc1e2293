package detector

import (
	"math"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []Hand
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []Hand) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fingerOffsets places a landmark relative to the wrist: reach along the
// finger direction and lateral spread across the palm, both in pixels.
type fingerOffsets struct {
	reach   float64
	lateral float64
}

// openOffsets is a canonical open hand: all fingers straight, tips well
// beyond their PIP joints.
var openOffsets = [NumLandmarks]fingerOffsets{
	Wrist:     {0, 0},
	ThumbCMC:  {30, -40},
	ThumbMCP:  {60, -70},
	ThumbIP:   {85, -95},
	ThumbTip:  {110, -120},
	IndexMCP:  {140, -40},
	IndexPIP:  {190, -48},
	IndexDIP:  {230, -54},
	IndexTip:  {270, -60},
	MiddleMCP: {150, 0},
	MiddlePIP: {205, 0},
	MiddleDIP: {250, 0},
	MiddleTip: {295, 0},
	RingMCP:   {140, 40},
	RingPIP:   {192, 48},
	RingDIP:   {234, 54},
	RingTip:   {275, 60},
	PinkyMCP:  {125, 76},
	PinkyPIP:  {168, 84},
	PinkyDIP:  {202, 90},
	PinkyTip:  {235, 96},
}

// curledOffsets is a canonical fist: every tip folded back toward the palm,
// closer to the wrist than its PIP joint.
var curledOffsets = [NumLandmarks]fingerOffsets{
	Wrist:     {0, 0},
	ThumbCMC:  {30, -40},
	ThumbMCP:  {55, -65},
	ThumbIP:   {75, -55},
	ThumbTip:  {80, -35},
	IndexMCP:  {140, -40},
	IndexPIP:  {170, -42},
	IndexDIP:  {160, -44},
	IndexTip:  {130, -38},
	MiddleMCP: {150, 0},
	MiddlePIP: {180, 0},
	MiddleDIP: {165, 0},
	MiddleTip: {135, 0},
	RingMCP:   {140, 40},
	RingPIP:   {170, 42},
	RingDIP:   {155, 44},
	RingTip:   {130, 38},
	PinkyMCP:  {125, 76},
	PinkyPIP:  {150, 78},
	PinkyDIP:  {138, 80},
	PinkyTip:  {115, 74},
}

// buildHand assembles a Hand from per-landmark offsets, with the fingers
// pointing in the direction that yields the given display angle (0° = hand
// rotated fully left, 90° = fingers up, 180° = fully right).
func buildHand(wrist Point, angleDeg float64, offsets *[NumLandmarks]fingerOffsets) Hand {
	theta := (180 - angleDeg) * math.Pi / 180
	// Image coordinates: y grows downward, so "up" is negative y.
	ux, uy := math.Cos(theta), -math.Sin(theta)
	rx, ry := -uy, ux

	h := Hand{Handedness: "Right", Score: 0.95}
	for i, o := range offsets {
		h.Points[i] = Point{
			X: wrist.X + ux*o.reach + rx*o.lateral,
			Y: wrist.Y + uy*o.reach + ry*o.lateral,
		}
	}
	return h
}

var defaultWrist = Point{X: 640, Y: 600}

// OpenHand returns a preset Hand with all fingers extended, fingers
// pointing straight up (wrist angle 90°).
func OpenHand() Hand {
	return OpenHandAt(90)
}

// OpenHandAt returns an open hand rotated so that the wrist-to-middle-MCP
// display angle equals angleDeg (domain 0..180).
func OpenHandAt(angleDeg float64) Hand {
	return buildHand(defaultWrist, angleDeg, &openOffsets)
}

// FistHand returns a preset Hand with all fingers curled.
func FistHand() Hand {
	return buildHand(defaultWrist, 90, &curledOffsets)
}

// OneHand returns a preset Hand with only the index finger extended.
func OneHand() Hand {
	return OneHandAt(defaultWrist.X + openOffsets[IndexTip].lateral)
}

// OneHandAt returns a pointing hand translated so the index fingertip sits
// at the given x coordinate.
func OneHandAt(x float64) Hand {
	offsets := curledOffsets
	offsets[IndexMCP] = openOffsets[IndexMCP]
	offsets[IndexPIP] = openOffsets[IndexPIP]
	offsets[IndexDIP] = openOffsets[IndexDIP]
	offsets[IndexTip] = openOffsets[IndexTip]

	h := buildHand(defaultWrist, 90, &offsets)
	dx := x - h.Points[IndexTip].X
	for i := range h.Points {
		h.Points[i].X += dx
	}
	return h
}
