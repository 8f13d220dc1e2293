package stabilize

import "math"

// Rule gates a single categorical transition: the candidate must have been
// proposed for MinStreak consecutive frames, and at least Cooldown seconds
// must have passed since the last confirmed transition.
type Rule struct {
	MinStreak int
	Cooldown  float64 // seconds
}

// ClassifierConfig configures a Classifier.
type ClassifierConfig[C comparable] struct {
	// Initial is the confirmed category before any transition.
	Initial C

	// Default is the rule applied to transitions not covered by RuleFor.
	Default Rule

	// RuleFor, when set, returns the rule for a specific transition.
	// It allows asymmetric policies such as instant release transitions.
	RuleFor func(from, to C) Rule

	// MaxVariance, when positive, rejects transitions while the supplied
	// auxiliary variance exceeds it. Frames without an auxiliary signal
	// (NaN) bypass the gate.
	MaxVariance float64
}

// Classifier stabilizes a raw per-frame categorical value into a confirmed
// category using streak counts, a cooldown timer and an optional
// auxiliary-variance gate. Not safe for concurrent use.
type Classifier[C comparable] struct {
	cfg ClassifierConfig[C]

	confirmed  C
	candidate  C
	streak     int
	lastChange float64
	changed    bool
}

// NewClassifier creates a Classifier confirming cfg.Initial.
func NewClassifier[C comparable](cfg ClassifierConfig[C]) *Classifier[C] {
	return &Classifier[C]{cfg: cfg, confirmed: cfg.Initial}
}

// Update feeds one raw classification at the given timestamp (seconds) and
// returns the currently confirmed category, which may equal the previous
// one. variance is the auxiliary-variance gate input; pass NaN when no
// auxiliary signal is available this frame.
func (c *Classifier[C]) Update(candidate C, now, variance float64) C {
	// Categorical debouncing: a differing candidate restarts the streak,
	// which is equivalent to zeroing every other per-category counter.
	if candidate != c.candidate || c.streak == 0 {
		c.candidate = candidate
		c.streak = 1
	} else {
		c.streak++
	}

	if candidate == c.confirmed {
		return c.confirmed
	}

	rule := c.cfg.Default
	if c.cfg.RuleFor != nil {
		rule = c.cfg.RuleFor(c.confirmed, candidate)
	}
	if rule.MinStreak < 1 {
		rule.MinStreak = 1
	}

	if c.streak < rule.MinStreak {
		return c.confirmed
	}
	if c.changed && now-c.lastChange < rule.Cooldown {
		return c.confirmed
	}
	if c.cfg.MaxVariance > 0 && !math.IsNaN(variance) && variance > c.cfg.MaxVariance {
		return c.confirmed
	}

	c.confirmed = candidate
	c.lastChange = now
	c.changed = true
	return c.confirmed
}

// Confirmed returns the currently confirmed category.
func (c *Classifier[C]) Confirmed() C { return c.confirmed }

// Reset restores the classifier to its freshly constructed state.
func (c *Classifier[C]) Reset() {
	c.confirmed = c.cfg.Initial
	var zero C
	c.candidate = zero
	c.streak = 0
	c.lastChange = 0
	c.changed = false
}
