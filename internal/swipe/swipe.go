// Package swipe implements a finite-state trajectory validator that turns a
// buffered, timestamped 2D position stream into edge-triggered swipe events.
// Velocities are computed from timestamps, so detection is frame-rate
// independent.
package swipe

import (
	"fmt"

	"github.com/ayusman/mudra/internal/ring"
)

// State identifies the detection phase.
type State int

const (
	StateIdle State = iota
	StateDetecting
	StateValidating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateValidating:
		return "validating"
	default:
		return "unknown"
	}
}

// Point is a 2D position in pixels.
type Point struct {
	X float64
	Y float64
}

// Config holds the swipe acceptance thresholds. Durations and timestamps
// are in seconds, distances in pixels, velocities in pixels per second.
type Config struct {
	BufferSize  int     // trail history length
	MinDistance float64 // total displacement along the swipe axis
	MinDuration float64
	MaxDuration float64
	MinVelocity float64
	MaxVelocity float64

	// MaxYDeviation is the maximum |dy|/|dx| ratio of the full trajectory.
	MaxYDeviation float64

	// Cooldown is the minimum time between two confirmed swipes.
	Cooldown float64

	// StartStep is the per-step displacement that each of the three most
	// recent samples must exceed before tracking starts.
	StartStep float64

	// BacktrackTolerance rejects trajectories containing a single
	// consecutive step against the swipe direction larger than this.
	BacktrackTolerance float64

	// RightToLeft mirrors the detector; the default is left-to-right.
	RightToLeft bool
}

// DefaultConfig returns thresholds tuned for a hand at roughly 1.5 m from
// the camera on a 1280x720 stream.
func DefaultConfig() Config {
	return Config{
		BufferSize:         18,
		MinDistance:        90,
		MinDuration:        0.20,
		MaxDuration:        2.00,
		MinVelocity:        35,
		MaxVelocity:        900,
		MaxYDeviation:      0.35,
		Cooldown:           0.80,
		StartStep:          3,
		BacktrackTolerance: 12,
	}
}

// Progress is a per-cycle snapshot of an in-flight swipe for external
// display.
type Progress struct {
	State    State
	Distance float64
	Duration float64
	Velocity float64
	Ratio    float64 // distance / MinDistance, clamped to [0, 1]
}

// Stats counts confirmed swipes and rejected (filtered) candidates.
type Stats struct {
	Confirmed int
	Filtered  int
	State     State
}

type trailPoint struct {
	pos Point
	t   float64
}

// Machine is the swipe state machine. One Update call per upstream frame;
// not safe for concurrent use.
type Machine struct {
	cfg Config
	dir float64 // +1 left-to-right, -1 right-to-left

	state     State
	trail     *ring.Ring[trailPoint]
	startPos  Point
	startTime float64

	lastConfirmed float64
	confirmedOnce bool

	confirmedTotal int
	filteredTotal  int
}

// New validates cfg and creates a Machine.
func New(cfg Config) (*Machine, error) {
	if cfg.BufferSize < 3 {
		return nil, fmt.Errorf("swipe: buffer size must be >= 3, got %d", cfg.BufferSize)
	}
	if cfg.MinDistance <= 0 {
		return nil, fmt.Errorf("swipe: min distance must be positive, got %g", cfg.MinDistance)
	}
	if cfg.MinDuration < 0 || cfg.MaxDuration <= cfg.MinDuration {
		return nil, fmt.Errorf("swipe: duration window [%g, %g] is invalid", cfg.MinDuration, cfg.MaxDuration)
	}
	if cfg.MinVelocity < 0 || cfg.MaxVelocity <= cfg.MinVelocity {
		return nil, fmt.Errorf("swipe: velocity window [%g, %g] is invalid", cfg.MinVelocity, cfg.MaxVelocity)
	}
	if cfg.MaxYDeviation < 0 {
		return nil, fmt.Errorf("swipe: negative y deviation %g", cfg.MaxYDeviation)
	}
	if cfg.Cooldown < 0 {
		return nil, fmt.Errorf("swipe: negative cooldown %g", cfg.Cooldown)
	}

	dir := 1.0
	if cfg.RightToLeft {
		dir = -1.0
	}
	return &Machine{
		cfg:   cfg,
		dir:   dir,
		trail: ring.New[trailPoint](cfg.BufferSize),
	}, nil
}

// Update feeds one measurement. pos is nil when no hand was found this
// cycle, which resets detection immediately. It returns true exactly once
// per confirmed swipe.
func (m *Machine) Update(pos *Point, now float64) bool {
	if pos == nil {
		// Hand left the frame: the candidate and its trail are void.
		m.abort()
		m.trail.Clear()
		return false
	}

	m.trail.Push(trailPoint{pos: *pos, t: now})
	if m.trail.Len() < 3 {
		return false
	}

	// States may chain within a single cycle: a sample can both complete
	// the required distance and satisfy validation.
	if m.state == StateIdle {
		m.checkStart()
	}
	if m.state == StateDetecting {
		m.track(now)
	}
	if m.state == StateValidating {
		return m.validate(now)
	}
	return false
}

// Progress returns a snapshot of the in-flight candidate, or false while
// idle.
func (m *Machine) Progress() (Progress, bool) {
	if m.state == StateIdle {
		return Progress{}, false
	}
	last, ok := m.trail.Last()
	if !ok {
		return Progress{}, false
	}

	dist := m.dir * (last.pos.X - m.startPos.X)
	dur := last.t - m.startTime
	if dur <= 0 {
		dur = 1e-6
	}
	ratio := dist / m.cfg.MinDistance
	if ratio < 0 {
		ratio = 0
	} else if ratio > 1 {
		ratio = 1
	}
	return Progress{
		State:    m.state,
		Distance: dist,
		Duration: dur,
		Velocity: dist / dur,
		Ratio:    ratio,
	}, true
}

// Stats returns lifetime counters and the current state.
func (m *Machine) Stats() Stats {
	return Stats{Confirmed: m.confirmedTotal, Filtered: m.filteredTotal, State: m.state}
}

// ResetStats zeroes the lifetime counters without touching detection state.
func (m *Machine) ResetStats() {
	m.confirmedTotal = 0
	m.filteredTotal = 0
}

// Reset restores the machine to its freshly constructed state, clearing the
// trail, counters and the cooldown stamp.
func (m *Machine) Reset() {
	m.abort()
	m.trail.Clear()
	m.lastConfirmed = 0
	m.confirmedOnce = false
	m.ResetStats()
}

// checkStart enters Detecting when the three most recent samples move
// consistently along the swipe axis.
func (m *Machine) checkStart() {
	n := m.trail.Len()
	p0 := m.trail.At(n - 3)
	p1 := m.trail.At(n - 2)
	p2 := m.trail.At(n - 1)

	d1 := m.dir * (p1.pos.X - p0.pos.X)
	d2 := m.dir * (p2.pos.X - p1.pos.X)
	if d1 > m.cfg.StartStep && d2 > m.cfg.StartStep {
		m.state = StateDetecting
		m.startPos = p0.pos
		m.startTime = p0.t
	}
}

// track aborts a stalled or reversed candidate and promotes one that has
// covered the required distance.
func (m *Machine) track(now float64) {
	if now-m.startTime > m.cfg.MaxDuration {
		m.abort()
		return
	}

	last, _ := m.trail.Last()
	dist := m.dir * (last.pos.X - m.startPos.X)
	if dist < 0 {
		m.abort()
		return
	}
	if dist >= m.cfg.MinDistance {
		m.state = StateValidating
	}
}

// validate confirms or rejects the candidate. A rejection counts as a
// filtered false positive.
func (m *Machine) validate(now float64) bool {
	duration := now - m.startTime
	if duration < m.cfg.MinDuration {
		return false // keep waiting
	}
	if duration > m.cfg.MaxDuration {
		m.abort()
		return false
	}

	if m.characteristicsOK() {
		if !m.confirmedOnce || now-m.lastConfirmed >= m.cfg.Cooldown {
			m.confirmedTotal++
			m.lastConfirmed = now
			m.confirmedOnce = true
			m.abort()
			return true
		}
	}

	m.filteredTotal++
	m.abort()
	return false
}

// characteristicsOK checks the full trajectory recorded since the candidate
// started: distance, lateral deviation, average velocity and the absence of
// strong backtracking.
func (m *Machine) characteristicsOK() bool {
	pts := make([]trailPoint, 0, m.trail.Len())
	for i := 0; i < m.trail.Len(); i++ {
		p := m.trail.At(i)
		if p.t >= m.startTime {
			pts = append(pts, p)
		}
	}
	if len(pts) < 3 {
		return false
	}

	first, last := pts[0], pts[len(pts)-1]
	dx := m.dir * (last.pos.X - first.pos.X)
	dy := last.pos.Y - first.pos.Y
	if dx < m.cfg.MinDistance {
		return false
	}

	yDev := dy
	if yDev < 0 {
		yDev = -yDev
	}
	denom := dx
	if denom < 1e-6 {
		denom = 1e-6
	}
	if yDev/denom > m.cfg.MaxYDeviation {
		return false
	}

	duration := last.t - first.t
	if duration < 1e-6 {
		duration = 1e-6
	}
	v := dx / duration
	if v < m.cfg.MinVelocity || v > m.cfg.MaxVelocity {
		return false
	}

	for i := 1; i < len(pts); i++ {
		step := m.dir * (pts[i].pos.X - pts[i-1].pos.X)
		if step < -m.cfg.BacktrackTolerance {
			return false
		}
	}
	return true
}

// abort returns to Idle and clears the transient candidate.
func (m *Machine) abort() {
	m.state = StateIdle
	m.startPos = Point{}
	m.startTime = 0
}
