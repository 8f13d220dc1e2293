// Package app wires the capture, detection and stabilization stages into
// the frame pipeline and owns its lifecycle.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/emit"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/swipe"
)

// IdleTimeout is how long the scene must stay still before the capture
// rate drops back to idle.
const IdleTimeout = 2 * time.Second

// TokenSwipe is emitted once per confirmed swipe.
const TokenSwipe = "swipe"

// Config holds the pipeline configuration.
type Config struct {
	CameraID     int
	MotionThresh float64
	Selector     gesture.SelectorConfig
	Swipe        swipe.Config
	Sink         emit.Emitter
}

// App runs the detection pipeline: camera frames through the motion
// gate, hand detector, gesture selector and swipe machine, with
// confirmed tokens fanning out to the configured sink.
type App struct {
	config   Config
	camera   capture.Camera
	motion   *capture.MotionGate
	detector detector.Detector
	selector *gesture.Selector
	swiper   *swipe.Machine

	enabled bool
	stopCh  chan struct{}
	mu      sync.RWMutex

	// published per-frame for the HTTP surface
	snapshot gesture.Snapshot
	stats    swipe.Stats
}

// New creates an App. It prefers the MediaPipe subprocess detector and
// falls back to the mock when the service cannot start.
func New(config Config) (*App, error) {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // 1% pixel change
	}

	sink := config.Sink
	if sink == nil {
		sink = emit.Func(func(string) {})
	}

	selector, err := gesture.NewSelector(config.Selector, sink)
	if err != nil {
		return nil, err
	}
	swiper, err := swipe.New(config.Swipe)
	if err != nil {
		return nil, err
	}

	a := &App{
		config:   config,
		camera:   capture.NewCamera(config.CameraID),
		motion:   capture.NewMotionGate(motionThreshold),
		selector: selector,
		swiper:   swiper,
	}

	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a, nil
}

// SetEnabled enables or disables detection. While disabled, the frame
// loop skips each tick without touching the camera; re-enabling resumes
// on the next tick.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled reports whether detection is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector. Call before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetCamera replaces the frame source. Call before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Snapshot returns the selector state as of the last processed frame.
func (a *App) Snapshot() gesture.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// Stats returns the swipe counters as of the last processed frame.
func (a *App) Stats() swipe.Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}

// Start opens the camera and launches the pipeline goroutine.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(capture.IdleFPS)

	a.stopCh = make(chan struct{})
	go a.run(a.stopCh)

	log.Println("Detection pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Detection pipeline stopped")
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}
