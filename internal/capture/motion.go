package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// MotionGate decides whether the scene changed enough to be worth
// running detection at full rate. It uses blurred frame differencing:
// grayscale, 21x21 Gaussian blur, absolute difference against the
// previous frame, binary threshold, then the fraction of changed pixels.
type MotionGate struct {
	threshold float64
	prev      gocv.Mat
	primed    bool
	mu        sync.Mutex
}

const (
	blurKernel    = 21
	diffThreshold = 25
)

// NewMotionGate creates a MotionGate. The threshold is the percentage of
// pixels that must change between frames, e.g. 1.0 means 1%.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{threshold: threshold, prev: gocv.NewMat()}
}

// Detect compares a frame against the previous one and reports whether
// motion exceeded the threshold, along with the changed-pixel percentage.
// The first frame only establishes the baseline.
func (g *MotionGate) Detect(frame *gocv.Mat) (bool, float64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: blurKernel, Y: blurKernel}, 0, 0, gocv.BorderDefault)

	if !g.primed {
		blurred.CopyTo(&g.prev)
		g.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, g.prev, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, diffThreshold, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(thresh)
	total := thresh.Rows() * thresh.Cols()
	percent := float64(changed) / float64(total) * 100.0

	blurred.CopyTo(&g.prev)

	return percent > g.threshold, percent
}

// Reset drops the baseline frame so the next Detect re-primes.
func (g *MotionGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.prev.Empty() {
		g.prev.Close()
		g.prev = gocv.NewMat()
	}
	g.primed = false
}

// Close releases the baseline frame.
func (g *MotionGate) Close() {
	g.Reset()
}

// SetThreshold changes the changed-pixel percentage threshold.
// Non-positive values are ignored.
func (g *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.threshold = threshold
}
