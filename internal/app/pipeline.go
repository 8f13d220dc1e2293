package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/swipe"
)

// run is the frame loop. Motion gating only controls the capture rate:
// detection itself runs on every frame, so a hand held perfectly still
// keeps its confirmed state instead of being dropped with the FPS.
func (a *App) run(stopCh <-chan struct{}) {
	activeMode := false
	lastMotion := time.Now()

	interval := time.Second / time.Duration(capture.IdleFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.Camera().ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			moved, _ := a.motion.Detect(frame)
			if moved {
				lastMotion = time.Now()
				if !activeMode {
					activeMode = true
					a.Camera().SetFPS(capture.ActiveFPS)
					interval = time.Second / time.Duration(capture.ActiveFPS)
					ticker.Reset(interval)
					log.Println("Switched to active mode")
				}
			} else if activeMode && time.Since(lastMotion) > IdleTimeout {
				activeMode = false
				a.Camera().SetFPS(capture.IdleFPS)
				interval = time.Second / time.Duration(capture.IdleFPS)
				ticker.Reset(interval)
				log.Println("Switched to idle mode")
			}

			hands, err := a.Detector().Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			a.processHands(hands, float64(time.Now().UnixNano())/1e9)
		}
	}
}

// processHands runs one measurement through the selector and the swipe
// machine and publishes the resulting state.
func (a *App) processHands(hands []detector.Hand, now float64) {
	var m detector.Measurement
	var palm *swipe.Point

	if len(hands) > 0 {
		m = hands[0].Measurement(now)
		center := detector.PalmCenter(&m.Landmarks)
		palm = &swipe.Point{X: center.X, Y: center.Y}
	} else {
		m = detector.Absent(now)
	}

	a.selector.Update(m)
	if a.swiper.Update(palm, now) {
		a.emit(TokenSwipe)
	}

	a.mu.Lock()
	a.snapshot = a.selector.Snapshot()
	a.stats = a.swiper.Stats()
	a.mu.Unlock()
}

func (a *App) emit(token string) {
	if a.config.Sink != nil {
		a.config.Sink.Emit(token)
	}
}
