// Package gesture turns hand landmark measurements into stable discrete
// control signals: a debounced gesture class, a 4-way rotation zone and a
// 3-way pointing zone, emitted as edge-triggered tokens.
package gesture

import "github.com/ayusman/mudra/internal/detector"

// Sample is the raw per-frame gesture classification.
type Sample int

const (
	SampleUnknown Sample = iota
	SampleFist
	SampleOpen
	SampleOne
)

func (s Sample) String() string {
	switch s {
	case SampleFist:
		return "fist"
	case SampleOpen:
		return "open"
	case SampleOne:
		return "one"
	default:
		return "unknown"
	}
}

// Thresholds tunes the finger-extension heuristic. The exact values are not
// load-bearing; they were settled empirically on a 1280x720 stream.
type Thresholds struct {
	// ExtensionRatio: a finger counts as extended when its tip is this much
	// farther from the wrist than its PIP joint.
	ExtensionRatio float64

	// MinBendDeg rejects tightly folded fingers: the angle at the PIP joint
	// (between the MCP and the tip) must exceed this.
	MinBendDeg float64

	// ThumbMinAngleDeg is the minimum straightness angle at the thumb MCP.
	ThumbMinAngleDeg float64

	// ThumbReachRatio: the thumb tip must be this much farther from the
	// wrist than the thumb IP joint.
	ThumbReachRatio float64
}

// DefaultThresholds returns the tuning used by the live pipeline.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExtensionRatio:   1.15,
		MinBendDeg:       25,
		ThumbMinAngleDeg: 35,
		ThumbReachRatio:  1.07,
	}
}

// fingerJoints indexes one non-thumb finger.
type fingerJoints struct {
	tip, pip, mcp int
}

var fingers = [...]fingerJoints{
	{detector.IndexTip, detector.IndexPIP, detector.IndexMCP},
	{detector.MiddleTip, detector.MiddlePIP, detector.MiddleMCP},
	{detector.RingTip, detector.RingPIP, detector.RingMCP},
	{detector.PinkyTip, detector.PinkyPIP, detector.PinkyMCP},
}

// Classify derives the raw gesture for one frame. Priority order: index
// finger alone wins over the open hand, which wins over the fist; zero or
// one extended fingers (other than a lone index) is a fist.
func Classify(lms *[detector.NumLandmarks]detector.Point, th Thresholds) Sample {
	var extended [len(fingers)]bool
	count := 0
	for i, f := range fingers {
		extended[i] = fingerExtended(lms, f, th)
		if extended[i] {
			count++
		}
	}

	indexOnly := extended[0] && !extended[1] && !extended[2] && !extended[3]
	if indexOnly {
		return SampleOne
	}
	if count >= 2 {
		return SampleOpen
	}
	return SampleFist
}

// fingerExtended checks the wrist-distance ratio and the bend angle at the
// PIP joint.
func fingerExtended(lms *[detector.NumLandmarks]detector.Point, f fingerJoints, th Thresholds) bool {
	wrist := lms[detector.Wrist]
	tipDist := detector.Distance(lms[f.tip], wrist)
	pipDist := detector.Distance(lms[f.pip], wrist)
	if pipDist < 1e-9 || tipDist < pipDist*th.ExtensionRatio {
		return false
	}
	return detector.AngleAt(lms[f.pip], lms[f.mcp], lms[f.tip]) > th.MinBendDeg
}

// ThumbExtended applies the thumb-specific test: straightness angle at the
// MCP joint plus a reach check against the IP joint. The thumb does not
// participate in the Fist/Open/One decision but is exposed for diagnostics.
func ThumbExtended(lms *[detector.NumLandmarks]detector.Point, th Thresholds) bool {
	wrist := lms[detector.Wrist]
	ang := detector.AngleAt(lms[detector.ThumbMCP], lms[detector.ThumbCMC], lms[detector.ThumbTip])
	if ang <= th.ThumbMinAngleDeg {
		return false
	}
	tipDist := detector.Distance(lms[detector.ThumbTip], wrist)
	ipDist := detector.Distance(lms[detector.ThumbIP], wrist)
	return ipDist > 1e-9 && tipDist > ipDist*th.ThumbReachRatio
}
