// Package capture provides camera frame acquisition and motion gating
// using GoCV (OpenCV).
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Capture settings. The frame width matches the pointing domain used by
// the gesture selector, so raw landmark X coordinates map straight onto
// screen thirds without rescaling.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720

	// IdleFPS is used while the scene is static; ActiveFPS once motion
	// or a tracked hand keeps the pipeline busy.
	IdleFPS   = 5
	ActiveFPS = 15
)

// ErrCameraNotOpen is returned when reading from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera defines the interface for frame sources. The pipeline adjusts
// the rate at runtime via SetFPS, so implementations must tolerate
// concurrent SetFPS and ReadFrame calls.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
}

// device captures frames from a physical camera via GoCV.
type device struct {
	deviceID int
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	open     bool
	fps      int
}

// NewCamera creates a Camera for the given device ID. It starts at
// IdleFPS; the pipeline raises the rate once something moves.
func NewCamera(deviceID int) Camera {
	return &device{deviceID: deviceID, fps: IdleFPS}
}

// Open opens the camera and applies the capture resolution.
func (d *device) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.open {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(d.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, DefaultWidth)
	capture.Set(gocv.VideoCaptureFrameHeight, DefaultHeight)
	capture.Set(gocv.VideoCaptureFPS, float64(d.fps))

	d.capture = capture
	d.open = true
	return nil
}

// Close closes the camera and releases resources.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.capture == nil {
		d.open = false
		return nil
	}

	err := d.capture.Close()
	d.capture = nil
	d.open = false
	return err
}

// ReadFrame reads a single frame. The caller owns the returned Mat and
// must Close it.
func (d *device) ReadFrame() (*gocv.Mat, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open || d.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := d.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}
	return &mat, nil
}

// SetFPS changes the capture rate. Non-positive values are ignored.
func (d *device) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.fps = fps
	if d.capture != nil {
		d.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the current capture rate setting.
func (d *device) FPS() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fps
}

// IsOpen reports whether the camera is open.
func (d *device) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
