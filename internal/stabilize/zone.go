package stabilize

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Zone is a discrete bucket derived from a continuous measurement.
// ZoneNone means "no zone confirmed yet"; zones are numbered from 1 and
// adjacent zones share a hysteresis boundary.
type Zone int

// ZoneNone is the zero Zone.
const ZoneNone Zone = 0

func (z Zone) String() string {
	if z == ZoneNone {
		return "none"
	}
	return fmt.Sprintf("zone%d", int(z))
}

// ZoneConfig configures a ZoneMapper. Boundaries must be strictly ascending
// and lie inside [DomainMin, DomainMax]; N-1 boundaries partition the domain
// into N zones.
type ZoneConfig struct {
	Boundaries    []float64
	Margin        float64 // Schmitt hysteresis margin around each boundary
	ConfirmFrames int     // consecutive identical candidates to confirm

	DomainMin float64
	DomainMax float64

	// CalibrationFrames, when positive, enables neutral calibration: the
	// median of the first CalibrationFrames inputs is shifted onto the
	// domain midpoint for all subsequent inputs.
	CalibrationFrames int
}

// ZoneMapper maps a filtered continuous scalar into one of N ordered zones
// using Schmitt-trigger hysteresis plus K-frame confirmation. The mapper
// only advances while the caller-supplied active flag is true; while
// inactive the confirmed zone is frozen. Not safe for concurrent use.
type ZoneMapper struct {
	cfg ZoneConfig

	shift      float64
	calibrated bool
	pool       []float64

	schmittZone   Zone
	pending       Zone
	pendingStreak int
	confirmed     Zone
	active        bool
}

// NewZoneMapper validates cfg and creates a ZoneMapper. Invalid
// configurations are rejected here so that Update never fails.
func NewZoneMapper(cfg ZoneConfig) (*ZoneMapper, error) {
	if len(cfg.Boundaries) == 0 {
		return nil, fmt.Errorf("zone mapper: at least one boundary required")
	}
	if cfg.DomainMax <= cfg.DomainMin {
		return nil, fmt.Errorf("zone mapper: domain [%g, %g] is empty", cfg.DomainMin, cfg.DomainMax)
	}
	for i, b := range cfg.Boundaries {
		if b <= cfg.DomainMin || b >= cfg.DomainMax {
			return nil, fmt.Errorf("zone mapper: boundary %g outside domain (%g, %g)", b, cfg.DomainMin, cfg.DomainMax)
		}
		if i > 0 && b <= cfg.Boundaries[i-1] {
			return nil, fmt.Errorf("zone mapper: boundaries must be strictly ascending, got %g after %g", b, cfg.Boundaries[i-1])
		}
	}
	if cfg.Margin < 0 {
		return nil, fmt.Errorf("zone mapper: negative margin %g", cfg.Margin)
	}
	if cfg.ConfirmFrames < 1 {
		return nil, fmt.Errorf("zone mapper: confirm frames must be >= 1, got %d", cfg.ConfirmFrames)
	}
	if cfg.CalibrationFrames < 0 {
		return nil, fmt.Errorf("zone mapper: negative calibration frames %d", cfg.CalibrationFrames)
	}

	m := &ZoneMapper{cfg: cfg}
	if cfg.CalibrationFrames > 0 {
		m.pool = make([]float64, 0, cfg.CalibrationFrames)
	}
	return m, nil
}

// Update feeds one filtered value and returns the confirmed zone. While
// active is false nothing advances: the previous confirmed zone is returned
// frozen, and neither confirmation streaks nor calibration consume samples.
func (m *ZoneMapper) Update(value float64, active bool) Zone {
	m.active = active
	if !active {
		return m.confirmed
	}

	value = m.calibrate(value)

	z := m.schmitt(value)
	m.schmittZone = z

	if z != m.pending {
		m.pending = z
		m.pendingStreak = 1
	} else {
		m.pendingStreak++
	}
	if m.pendingStreak >= m.cfg.ConfirmFrames {
		m.confirmed = m.pending
	}

	return m.confirmed
}

// Confirmed returns the last confirmed zone, frozen while inactive.
func (m *ZoneMapper) Confirmed() Zone { return m.confirmed }

// Live returns the confirmed zone when the mapper is actively tracking, and
// ZoneNone to signal "not currently tracked" otherwise.
func (m *ZoneMapper) Live() Zone {
	if !m.active {
		return ZoneNone
	}
	return m.confirmed
}

// Calibrated reports whether neutral calibration has completed. A mapper
// configured without calibration frames never calibrates and runs on the
// raw domain; this is not an error.
func (m *ZoneMapper) Calibrated() bool { return m.calibrated }

// Reset restores the mapper to its freshly constructed state, including
// calibration.
func (m *ZoneMapper) Reset() {
	m.shift = 0
	m.calibrated = false
	if m.cfg.CalibrationFrames > 0 {
		m.pool = m.pool[:0]
	}
	m.schmittZone = ZoneNone
	m.pending = ZoneNone
	m.pendingStreak = 0
	m.confirmed = ZoneNone
	m.active = false
}

// calibrate collects neutral-pool samples and, once complete, applies the
// constant shift that maps the pool median onto the domain midpoint.
func (m *ZoneMapper) calibrate(value float64) float64 {
	if m.cfg.CalibrationFrames == 0 {
		return value
	}
	if m.calibrated {
		return m.clamp(value + m.shift)
	}

	m.pool = append(m.pool, value)
	if len(m.pool) < m.cfg.CalibrationFrames {
		return value
	}

	sorted := append([]float64(nil), m.pool...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	mid := (m.cfg.DomainMin + m.cfg.DomainMax) / 2
	m.shift = mid - median
	m.calibrated = true
	m.pool = nil

	return m.clamp(value + m.shift)
}

func (m *ZoneMapper) clamp(v float64) float64 {
	if v < m.cfg.DomainMin {
		return m.cfg.DomainMin
	}
	if v > m.cfg.DomainMax {
		return m.cfg.DomainMax
	}
	return v
}

// schmitt selects the candidate zone. Leaving the current zone upward
// requires exceeding boundary+margin; leaving downward requires falling
// below boundary-margin. The very first observation uses plain banding.
func (m *ZoneMapper) schmitt(v float64) Zone {
	b := m.cfg.Boundaries

	if m.schmittZone == ZoneNone {
		k := 0
		for k < len(b) && v >= b[k] {
			k++
		}
		return Zone(k + 1)
	}

	k := int(m.schmittZone) - 1
	for k < len(b) && v >= b[k]+m.cfg.Margin {
		k++
	}
	for k > 0 && v < b[k-1]-m.cfg.Margin {
		k--
	}
	return Zone(k + 1)
}
