package gesture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/emit"
	"github.com/ayusman/mudra/internal/ring"
	"github.com/ayusman/mudra/internal/stabilize"
)

// Mode identifies which sub-detector the confirmed gesture has activated.
type Mode int

const (
	ModeNone Mode = iota
	ModeRotation
	ModePointing
)

func (m Mode) String() string {
	switch m {
	case ModeRotation:
		return "rotation"
	case ModePointing:
		return "pointing"
	default:
		return "none"
	}
}

// Tokens emitted on the one-way messaging channel.
const (
	TokenFist = "gesture/zero"
	TokenOpen = "gesture/five"
	TokenOne  = "gesture/one"

	// Terminal no-target tokens, sent once after the grace period.
	TokenNoMenu  = "area/menu/0"
	TokenNoColor = "area/color/0"
)

// SelectorConfig tunes the mode selector. Durations are in seconds,
// matching measurement timestamps.
type SelectorConfig struct {
	// FrameWidth is the pointing domain in pixels.
	FrameWidth float64

	// MinConfidence drops measurements below this landmark score.
	MinConfidence float64

	Thresholds Thresholds

	// GestureRule is the standard gate for gesture transitions. The
	// fist-to-one release bypasses it.
	GestureRule stabilize.Rule

	// MaxGestureVariance blocks gesture transitions while the filtered
	// angle variance (deg^2) exceeds it.
	MaxGestureVariance float64

	// MaxZoneVariance freezes the rotation mapper while the filtered angle
	// variance (deg^2) exceeds it.
	MaxZoneVariance float64

	// VarianceWindow is the number of filtered angles feeding the gates.
	VarianceWindow int

	// MaxAngleJump clamps single-frame angle spikes, in degrees.
	MaxAngleJump float64

	RotationBoundaries    []float64
	RotationMargin        float64
	RotationConfirmFrames int
	CalibrationFrames     int

	PointingMargin        float64
	PointingConfirmFrames int

	// NoTargetGrace is how long present=false must hold before the
	// terminal no-target tokens are emitted, in seconds.
	NoTargetGrace float64
}

// DefaultSelectorConfig returns the strict preset.
func DefaultSelectorConfig() SelectorConfig {
	return PresetConfig(PresetStrict)
}

// Preset names a tuning bundle.
type Preset string

const (
	PresetStrict Preset = "strict"
	PresetNormal Preset = "normal"
	PresetLoose  Preset = "loose"
)

// PresetConfig returns the named tuning bundle. Unknown presets fall back
// to strict.
func PresetConfig(p Preset) SelectorConfig {
	cfg := SelectorConfig{
		FrameWidth:            1280,
		MinConfidence:         0.3,
		Thresholds:            DefaultThresholds(),
		GestureRule:           stabilize.Rule{MinStreak: 5, Cooldown: 1.0},
		MaxGestureVariance:    24,
		MaxZoneVariance:       14,
		VarianceWindow:        8,
		MaxAngleJump:          30,
		RotationBoundaries:    []float64{60, 90, 120},
		RotationMargin:        7,
		RotationConfirmFrames: 4,
		CalibrationFrames:     10,
		PointingMargin:        12,
		PointingConfirmFrames: 3,
		NoTargetGrace:         3.0,
	}
	switch p {
	case PresetNormal:
		cfg.GestureRule = stabilize.Rule{MinStreak: 4, Cooldown: 0.45}
		cfg.RotationMargin = 5
		cfg.RotationConfirmFrames = 3
	case PresetLoose:
		cfg.GestureRule = stabilize.Rule{MinStreak: 2, Cooldown: 0.2}
		cfg.MaxGestureVariance = 50
		cfg.MaxZoneVariance = 35
		cfg.RotationMargin = 3
		cfg.RotationConfirmFrames = 2
	}
	return cfg
}

// Result is the per-frame outcome of Selector.Update.
type Result struct {
	Gesture   Sample
	Mode      Mode
	Zone      stabilize.Zone
	Angle     float64
	HaveAngle bool
	NoTarget  bool // grace period elapsed with no hand
}

// Snapshot is the synchronous query surface for cross-process inspection,
// independent of the emission stream.
type Snapshot struct {
	Gesture      string  `json:"gesture"`
	Mode         string  `json:"mode"`
	RotationZone int     `json:"rotationZone"`
	PointingZone int     `json:"pointingZone"`
	Angle        float64 `json:"angle"`
	Calibrated   bool    `json:"calibrated"`
	NoTarget     bool    `json:"noTarget"`
}

// Selector is the top-level combinator: it classifies the raw gesture each
// frame, stabilizes it with an asymmetric hysteresis policy, and activates
// exactly one of the two owned zone mappers. One Update call per frame; not
// safe for concurrent use.
type Selector struct {
	cfg  SelectorConfig
	sink emit.Emitter

	gesture     *stabilize.Classifier[Sample]
	angleFilter *stabilize.OneEuro
	angleWindow *ring.Ring[float64]
	rotation    *stabilize.ZoneMapper
	pointing    *stabilize.ZoneMapper

	angle     float64
	haveAngle bool

	lastGestureToken  string
	lastPositionToken string

	noHandSince float64
	noHand      bool
	noHandSent  bool

	last Result
}

// NewSelector validates cfg and creates a Selector emitting tokens into
// sink. sink may be nil for query-only use.
func NewSelector(cfg SelectorConfig, sink emit.Emitter) (*Selector, error) {
	if cfg.FrameWidth <= 0 {
		return nil, fmt.Errorf("selector: frame width must be positive, got %g", cfg.FrameWidth)
	}
	if cfg.VarianceWindow < 2 {
		return nil, fmt.Errorf("selector: variance window must be >= 2, got %d", cfg.VarianceWindow)
	}
	if cfg.NoTargetGrace < 0 {
		return nil, fmt.Errorf("selector: negative no-target grace %g", cfg.NoTargetGrace)
	}

	rotation, err := stabilize.NewZoneMapper(stabilize.ZoneConfig{
		Boundaries:        cfg.RotationBoundaries,
		Margin:            cfg.RotationMargin,
		ConfirmFrames:     cfg.RotationConfirmFrames,
		DomainMin:         0,
		DomainMax:         180,
		CalibrationFrames: cfg.CalibrationFrames,
	})
	if err != nil {
		return nil, fmt.Errorf("selector: rotation mapper: %w", err)
	}

	pointing, err := stabilize.NewZoneMapper(stabilize.ZoneConfig{
		Boundaries:    []float64{cfg.FrameWidth / 3, cfg.FrameWidth * 2 / 3},
		Margin:        cfg.PointingMargin,
		ConfirmFrames: cfg.PointingConfirmFrames,
		DomainMin:     0,
		DomainMax:     cfg.FrameWidth,
	})
	if err != nil {
		return nil, fmt.Errorf("selector: pointing mapper: %w", err)
	}

	rule := cfg.GestureRule
	classifier := stabilize.NewClassifier(stabilize.ClassifierConfig[Sample]{
		Initial: SampleUnknown,
		Default: rule,
		RuleFor: func(from, to Sample) stabilize.Rule {
			// Releasing a fist into a point is a fast intentional action
			// and confirms instantly; every other transition is a sticky
			// mode switch behind the standard gate.
			if from == SampleFist && to == SampleOne {
				return stabilize.Rule{MinStreak: 1, Cooldown: 0}
			}
			return rule
		},
		MaxVariance: cfg.MaxGestureVariance,
	})

	return &Selector{
		cfg:         cfg,
		sink:        sink,
		gesture:     classifier,
		angleFilter: stabilize.DefaultOneEuro(),
		angleWindow: ring.New[float64](cfg.VarianceWindow),
		rotation:    rotation,
		pointing:    pointing,
	}, nil
}

// Update consumes one frame measurement and returns the stabilized result.
// Missing observations (absent hand, low confidence, degenerate geometry)
// never mutate confirmed state; short dropouts are absorbed silently.
func (s *Selector) Update(m detector.Measurement) Result {
	now := m.Timestamp

	if !m.Present {
		return s.updateAbsent(now)
	}

	// A visible hand cancels any pending no-target countdown, even when
	// the frame itself is unusable.
	s.noHand = false
	s.noHandSent = false
	s.last.NoTarget = false

	if m.Confidence < s.cfg.MinConfidence {
		return s.last
	}

	angleRaw, ok := wristAngle(&m.Landmarks)
	if !ok {
		return s.last
	}

	filtered := s.angleFilter.Filter(angleRaw)
	// Slew limit: a single-frame spike moves the angle at most MaxAngleJump,
	// while a genuine fast rotation still converges frame by frame.
	if s.haveAngle {
		if d := filtered - s.angle; d > s.cfg.MaxAngleJump {
			filtered = s.angle + s.cfg.MaxAngleJump
		} else if d < -s.cfg.MaxAngleJump {
			filtered = s.angle - s.cfg.MaxAngleJump
		}
	}
	s.angle = filtered
	s.haveAngle = true
	s.angleWindow.Push(filtered)

	variance := math.NaN()
	if s.angleWindow.Len() == s.angleWindow.Cap() {
		variance = stat.Variance(s.angleWindow.Values(), nil)
	}

	raw := Classify(&m.Landmarks, s.cfg.Thresholds)
	confirmed := s.gesture.Update(raw, now, variance)

	varOK := math.IsNaN(variance) || variance <= s.cfg.MaxZoneVariance
	rotZone := s.rotation.Update(filtered, confirmed == SampleOpen && varOK)
	pointZone := s.pointing.Update(m.Landmarks[detector.IndexTip].X, confirmed == SampleOne)

	res := Result{Gesture: confirmed, Angle: filtered, HaveAngle: true}
	switch confirmed {
	case SampleOpen:
		res.Mode = ModeRotation
		res.Zone = rotZone
	case SampleOne:
		res.Mode = ModePointing
		res.Zone = pointZone
	}

	s.emitTokens(confirmed, rotZone, pointZone)
	s.last = res
	return res
}

// updateAbsent handles a frame without a hand: confirmed state is retained,
// and only after the grace period elapses is the terminal no-target pair
// emitted, exactly once.
func (s *Selector) updateAbsent(now float64) Result {
	if !s.noHand {
		s.noHand = true
		s.noHandSince = now
	}
	if !s.noHandSent && now-s.noHandSince >= s.cfg.NoTargetGrace {
		s.emit(TokenNoMenu)
		s.emit(TokenNoColor)
		s.noHandSent = true
		// Force a re-announcement of the position once the hand returns.
		s.lastPositionToken = ""
		s.last.NoTarget = true
	}
	return s.last
}

// emitTokens performs the edge-triggered emission of gesture and position
// tokens.
func (s *Selector) emitTokens(confirmed Sample, rotZone, pointZone stabilize.Zone) {
	var gestureToken string
	switch confirmed {
	case SampleFist:
		gestureToken = TokenFist
	case SampleOpen:
		gestureToken = TokenOpen
	case SampleOne:
		gestureToken = TokenOne
	}
	if gestureToken != "" && gestureToken != s.lastGestureToken {
		s.emit(gestureToken)
		s.lastGestureToken = gestureToken
	}

	var positionToken string
	switch {
	case confirmed == SampleOpen && rotZone != stabilize.ZoneNone:
		positionToken = fmt.Sprintf("area/menu/%d", int(rotZone))
	case confirmed == SampleOne && pointZone != stabilize.ZoneNone:
		positionToken = fmt.Sprintf("area/color/%d", int(pointZone))
	}
	if positionToken != "" && positionToken != s.lastPositionToken {
		s.emit(positionToken)
		s.lastPositionToken = positionToken
	}
}

func (s *Selector) emit(token string) {
	if s.sink != nil {
		s.sink.Emit(token)
	}
}

// Snapshot returns the current state for synchronous inspection.
func (s *Selector) Snapshot() Snapshot {
	return Snapshot{
		Gesture:      s.last.Gesture.String(),
		Mode:         s.last.Mode.String(),
		RotationZone: int(s.rotation.Confirmed()),
		PointingZone: int(s.pointing.Confirmed()),
		Angle:        s.angle,
		Calibrated:   s.rotation.Calibrated(),
		NoTarget:     s.last.NoTarget,
	}
}

// Reset restores the selector and both owned mappers to their freshly
// constructed state.
func (s *Selector) Reset() {
	s.gesture.Reset()
	s.angleFilter.Reset()
	s.angleWindow.Clear()
	s.rotation.Reset()
	s.pointing.Reset()
	s.angle = 0
	s.haveAngle = false
	s.lastGestureToken = ""
	s.lastPositionToken = ""
	s.noHand = false
	s.noHandSent = false
	s.noHandSince = 0
	s.last = Result{}
}

// wristAngle computes the display angle of the wrist-to-middle-MCP vector,
// folded into [0, 180] so that fingers pointing left read ~0°, up ~90° and
// right ~180°. Returns false when the vector is too short to define an
// angle.
func wristAngle(lms *[detector.NumLandmarks]detector.Point) (float64, bool) {
	wrist := lms[detector.Wrist]
	mcp := lms[detector.MiddleMCP]

	dx := mcp.X - wrist.X
	dy := mcp.Y - wrist.Y
	if math.Hypot(dx, dy) < 1e-3 {
		return 0, false
	}

	// Image coordinates have y downward, hence the sign flip.
	ang := math.Atan2(-dy, dx) * 180 / math.Pi
	if ang < 0 {
		ang += 360
	}
	if ang > 180 {
		ang = 360 - ang
	}
	ang = 180 - ang

	if ang < 0 {
		ang = 0
	} else if ang > 180 {
		ang = 180
	}
	return ang, true
}
