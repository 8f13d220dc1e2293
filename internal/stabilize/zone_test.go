package stabilize

import "testing"

func mustZoneMapper(t *testing.T, cfg ZoneConfig) *ZoneMapper {
	t.Helper()
	m, err := NewZoneMapper(cfg)
	if err != nil {
		t.Fatalf("NewZoneMapper(%+v): %v", cfg, err)
	}
	return m
}

func angleZoneConfig() ZoneConfig {
	return ZoneConfig{
		Boundaries:    []float64{60, 90, 120},
		Margin:        5,
		ConfirmFrames: 1,
		DomainMin:     0,
		DomainMax:     180,
	}
}

func TestNewZoneMapperValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  ZoneConfig
	}{
		{"no boundaries", ZoneConfig{ConfirmFrames: 1, DomainMax: 180}},
		{"empty domain", ZoneConfig{Boundaries: []float64{60}, ConfirmFrames: 1, DomainMin: 180, DomainMax: 180}},
		{"boundary outside domain", ZoneConfig{Boundaries: []float64{200}, ConfirmFrames: 1, DomainMax: 180}},
		{"boundaries not ascending", ZoneConfig{Boundaries: []float64{90, 60}, ConfirmFrames: 1, DomainMax: 180}},
		{"negative margin", ZoneConfig{Boundaries: []float64{60}, Margin: -1, ConfirmFrames: 1, DomainMax: 180}},
		{"zero confirm frames", ZoneConfig{Boundaries: []float64{60}, DomainMax: 180}},
		{"negative calibration", ZoneConfig{Boundaries: []float64{60}, ConfirmFrames: 1, DomainMax: 180, CalibrationFrames: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewZoneMapper(tt.cfg); err == nil {
				t.Errorf("NewZoneMapper accepted invalid config %+v", tt.cfg)
			}
		})
	}
}

func TestZoneMapperPlainBandingOnFirstObservation(t *testing.T) {
	tests := []struct {
		value float64
		want  Zone
	}{
		{10, Zone(1)},
		{59.9, Zone(1)},
		{60, Zone(2)},
		{89, Zone(2)},
		{90, Zone(3)},
		{119, Zone(3)},
		{120, Zone(4)},
		{179, Zone(4)},
	}

	for _, tt := range tests {
		m := mustZoneMapper(t, angleZoneConfig())
		if got := m.Update(tt.value, true); got != tt.want {
			t.Errorf("Update(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestZoneMapperNoOscillationAtBoundary(t *testing.T) {
	m := mustZoneMapper(t, angleZoneConfig())

	if got := m.Update(40, true); got != Zone(1) {
		t.Fatalf("initial zone = %v, want zone1", got)
	}

	// Hovering just below boundary+margin (65) must never leave zone 1.
	for _, v := range []float64{58, 63, 64.9, 63, 63} {
		if got := m.Update(v, true); got != Zone(1) {
			t.Fatalf("Update(%v) = %v, want zone1 held by hysteresis", v, got)
		}
	}

	// Clearing the margin flips the zone.
	if got := m.Update(66, true); got != Zone(2) {
		t.Errorf("Update(66) = %v, want zone2", got)
	}

	// Coming back needs to drop below boundary-margin (55).
	if got := m.Update(57, true); got != Zone(2) {
		t.Errorf("Update(57) = %v, want zone2 held by hysteresis", got)
	}
	if got := m.Update(54, true); got != Zone(1) {
		t.Errorf("Update(54) = %v, want zone1", got)
	}
}

func TestZoneMapperHoldsZoneWhileHoveringInsideMargin(t *testing.T) {
	cfg := angleZoneConfig()
	cfg.ConfirmFrames = 3
	m := mustZoneMapper(t, cfg)

	for i := 0; i < 3; i++ {
		m.Update(58, true)
	}
	if got := m.Confirmed(); got != Zone(1) {
		t.Fatalf("confirmed = %v after 3 frames at 58, want zone1", got)
	}

	// 63 sits past the 60 boundary but inside boundary+margin (65), so
	// the mapper must hold zone 1 no matter how long it persists.
	for i, v := range []float64{58, 63, 63, 63, 63} {
		if got := m.Update(v, true); got != Zone(1) {
			t.Fatalf("Update(%v) at frame %d = %v, want zone1", v, i, got)
		}
	}
	if got := m.Confirmed(); got != Zone(1) {
		t.Errorf("confirmed = %v after hovering at 63, want zone1", got)
	}
}

func TestZoneMapperSkipsZonesOnLargeJump(t *testing.T) {
	m := mustZoneMapper(t, angleZoneConfig())

	m.Update(40, true)
	if got := m.Update(150, true); got != Zone(4) {
		t.Errorf("Update(150) = %v, want zone4 in a single step", got)
	}
}

func TestZoneMapperConfirmFrames(t *testing.T) {
	cfg := angleZoneConfig()
	cfg.ConfirmFrames = 4
	m := mustZoneMapper(t, cfg)

	for i := 0; i < 4; i++ {
		m.Update(40, true)
	}
	if got := m.Confirmed(); got != Zone(1) {
		t.Fatalf("confirmed = %v after 4 frames, want zone1", got)
	}

	// Three frames in the new zone are not enough.
	for i := 0; i < 3; i++ {
		if got := m.Update(100, true); got != Zone(1) {
			t.Fatalf("confirmed flipped to %v after %d frames", got, i+1)
		}
	}
	if got := m.Update(100, true); got != Zone(3) {
		t.Errorf("confirmed = %v after 4 frames, want zone3", got)
	}
}

func TestZoneMapperConfirmStreakRestartsOnFlicker(t *testing.T) {
	cfg := angleZoneConfig()
	cfg.ConfirmFrames = 3
	m := mustZoneMapper(t, cfg)

	for i := 0; i < 3; i++ {
		m.Update(40, true)
	}

	m.Update(100, true)
	m.Update(100, true)
	m.Update(40, true) // breaks the streak
	m.Update(100, true)
	if got := m.Update(100, true); got != Zone(1) {
		t.Errorf("confirmed = %v, want zone1 until a clean streak", got)
	}
	if got := m.Update(100, true); got != Zone(3) {
		t.Errorf("confirmed = %v, want zone3 after clean streak", got)
	}
}

func TestZoneMapperFreezesWhileInactive(t *testing.T) {
	m := mustZoneMapper(t, angleZoneConfig())

	m.Update(40, true)
	if got := m.Confirmed(); got != Zone(1) {
		t.Fatalf("confirmed = %v, want zone1", got)
	}

	// Inactive updates change nothing, whatever the value.
	for _, v := range []float64{150, 150, 150} {
		if got := m.Update(v, false); got != Zone(1) {
			t.Fatalf("inactive Update(%v) = %v, want frozen zone1", v, got)
		}
	}
	if got := m.Live(); got != ZoneNone {
		t.Errorf("Live while inactive = %v, want none", got)
	}
	if got := m.Confirmed(); got != Zone(1) {
		t.Errorf("Confirmed while inactive = %v, want frozen zone1", got)
	}

	// Reactivating resumes from the frozen state.
	if got := m.Update(41, true); got != Zone(1) {
		t.Errorf("Update after reactivation = %v, want zone1", got)
	}
	if got := m.Live(); got != Zone(1) {
		t.Errorf("Live after reactivation = %v, want zone1", got)
	}
}

func TestZoneMapperCalibrationShiftsNeutral(t *testing.T) {
	cfg := angleZoneConfig()
	cfg.CalibrationFrames = 5
	m := mustZoneMapper(t, cfg)

	// Neutral rest pose well off the domain midpoint.
	for i := 0; i < 5; i++ {
		m.Update(30, true)
	}
	if !m.Calibrated() {
		t.Fatal("mapper not calibrated after 5 active frames")
	}

	// The median (30) now maps onto the midpoint (90): zone 2 of 4.
	if got := m.Update(30, true); got != Zone(2) {
		t.Errorf("calibrated Update(30) = %v, want zone2 (midpoint)", got)
	}
}

func TestZoneMapperInactiveFramesDoNotCalibrate(t *testing.T) {
	cfg := angleZoneConfig()
	cfg.CalibrationFrames = 3
	m := mustZoneMapper(t, cfg)

	for i := 0; i < 10; i++ {
		m.Update(30, false)
	}
	if m.Calibrated() {
		t.Fatal("inactive frames consumed calibration samples")
	}

	for i := 0; i < 3; i++ {
		m.Update(30, true)
	}
	if !m.Calibrated() {
		t.Error("mapper not calibrated after 3 active frames")
	}
}

func TestZoneMapperWithoutCalibrationRunsRaw(t *testing.T) {
	m := mustZoneMapper(t, angleZoneConfig())

	m.Update(100, true)
	if m.Calibrated() {
		t.Error("mapper without calibration frames reported calibrated")
	}
	if got := m.Confirmed(); got != Zone(3) {
		t.Errorf("confirmed = %v, want zone3 from raw value", got)
	}
}

func TestZoneMapperReset(t *testing.T) {
	cfg := angleZoneConfig()
	cfg.CalibrationFrames = 2
	m := mustZoneMapper(t, cfg)

	m.Update(30, true)
	m.Update(30, true)
	if !m.Calibrated() {
		t.Fatal("setup: mapper should be calibrated")
	}

	m.Reset()

	if m.Calibrated() {
		t.Error("Calibrated survived Reset")
	}
	if got := m.Confirmed(); got != ZoneNone {
		t.Errorf("Confirmed after Reset = %v, want none", got)
	}
	if got := m.Live(); got != ZoneNone {
		t.Errorf("Live after Reset = %v, want none", got)
	}
}
